package spider

// Temp holds values the rule that queued a follow-up request hands to the
// rule that parses it, usually the record the follow-up completes.
type Temp map[string]interface{}

func (t Temp) Get(key string) interface{} {
	return t[key]
}
