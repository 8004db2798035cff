package tasklib

import (
	"github.com/dreamerjackson/ducrawler/spider"
	"github.com/dreamerjackson/ducrawler/tasklib/athletics"
	"github.com/dreamerjackson/ducrawler/tasklib/bulletin"
	"github.com/dreamerjackson/ducrawler/tasklib/calendar"
)

func init() {
	spider.TaskStore.Add(bulletin.NewTask(bulletin.DefaultPrefix))
	spider.TaskStore.Add(athletics.NewTask())
	spider.TaskStore.Add(calendar.NewTask(calendar.DefaultStart, calendar.DefaultEnd))
}
