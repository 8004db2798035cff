package sqlstorage

import (
	"encoding/json"
	"time"

	"github.com/dreamerjackson/ducrawler/spider"
	"github.com/dreamerjackson/ducrawler/sqldb"
	"go.uber.org/zap"
)

// SQLStorage mirrors every saved record set into a table named after the
// task, one row per record.
type SQLStorage struct {
	db    sqldb.DBer
	Table map[string]struct{}
	now   func() time.Time
	options
}

func New(opts ...Option) (*SQLStorage, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	db, err := sqldb.New(
		sqldb.WithConnURL(options.sqlURL),
		sqldb.WithLogger(options.logger),
	)
	if err != nil {
		return nil, err
	}

	return newWithDB(db, options), nil
}

func newWithDB(db sqldb.DBer, options options) *SQLStorage {
	if options.BatchCount <= 0 {
		options.BatchCount = defaultOptions.BatchCount
	}

	if options.logger == nil {
		options.logger = zap.NewNop()
	}

	return &SQLStorage{
		db:      db,
		Table:   make(map[string]struct{}),
		now:     time.Now,
		options: options,
	}
}

func (s *SQLStorage) Save(cell *spider.DataCell) error {
	name := cell.GetTableName()
	columns := getFields(cell)

	if _, ok := s.Table[name]; !ok {
		// 创建表
		err := s.db.CreateTable(sqldb.TableData{
			TableName:   name,
			ColumnNames: columns,
			AutoKey:     true,
		})
		if err != nil {
			return &spider.IOError{Path: "mysql:" + name, Err: err}
		}

		s.Table[name] = struct{}{}
	}

	ts := s.now().Format("2006-01-02 15:04:05")
	args := make([]interface{}, 0, s.BatchCount*len(columns))
	count := 0

	flush := func() error {
		if count == 0 {
			return nil
		}

		err := s.db.Insert(sqldb.TableData{
			TableName:   name,
			ColumnNames: columns,
			Args:        args,
			DataCount:   count,
		})
		args = args[:0]
		count = 0
		if err != nil {
			return &spider.IOError{Path: "mysql:" + name, Err: err}
		}

		return nil
	}

	for _, item := range cell.Items {
		for _, v := range itemValues(item, cell.Fields) {
			args = append(args, v)
		}
		args = append(args, cell.URL, ts)
		count++

		if count >= s.BatchCount {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	if err := flush(); err != nil {
		return err
	}

	s.logger.Info("records mirrored", zap.String("table", name), zap.Int("count", len(cell.Items)))

	return nil
}

// Metadata columns appended after the record fields. Record fields are JSON
// keys such as "url" or "time", and MySQL compares column names without
// case, so these must not share a name with any of them.
const (
	colCrawlURL  = "crawl_url"
	colCrawledAt = "crawled_at"
)

func getFields(cell *spider.DataCell) []sqldb.Field {
	var columnNames []sqldb.Field
	for _, field := range cell.Fields {
		columnNames = append(columnNames, sqldb.Field{
			Title: field,
			Type:  "MEDIUMTEXT",
		})
	}

	columnNames = append(columnNames,
		sqldb.Field{Title: colCrawlURL, Type: "VARCHAR(255)"},
		sqldb.Field{Title: colCrawledAt, Type: "VARCHAR(255)"},
	)

	return columnNames
}

// itemValues reads fields from the JSON form of item, so column names match
// the keys of the JSON output. Absent fields become "".
func itemValues(item interface{}, fields []string) []string {
	data := map[string]interface{}{}
	if b, err := json.Marshal(item); err == nil {
		_ = json.Unmarshal(b, &data)
	}

	value := make([]string, 0, len(fields))
	for _, field := range fields {
		switch v := data[field].(type) {
		case nil:
			value = append(value, "")
		case string:
			value = append(value, v)
		default:
			j, err := json.Marshal(v)
			if err != nil {
				value = append(value, "")
			} else {
				value = append(value, string(j))
			}
		}
	}

	return value
}
