package sqldb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

type DBer interface {
	CreateTable(t TableData) error
	Insert(t TableData) error
}

type Sqldb struct {
	options
	db *sql.DB
}

type Field struct {
	Title string
	Type  string
}

type TableData struct {
	TableName   string
	ColumnNames []Field       // 标题字段
	Args        []interface{} // 数据
	DataCount   int           // 插入数据的数量
	AutoKey     bool
}

func New(opts ...Option) (*Sqldb, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	d := &Sqldb{}
	d.options = options

	if err := d.OpenDB(); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Sqldb) OpenDB() error {
	db, err := sql.Open("mysql", d.sqlURL)
	if err != nil {
		return err
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	if err = db.Ping(); err != nil {
		return err
	}

	d.db = db

	return nil
}

func (d *Sqldb) Close() error {
	return d.db.Close()
}

func quote(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func CreateTableSQL(t TableData) (string, error) {
	if len(t.ColumnNames) == 0 {
		return "", errors.New("column can not be empty")
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS " + quote(t.TableName) + " (")

	if t.AutoKey {
		b.WriteString("id INT(12) NOT NULL PRIMARY KEY AUTO_INCREMENT,")
	}

	cols := make([]string, 0, len(t.ColumnNames))
	for _, c := range t.ColumnNames {
		cols = append(cols, quote(c.Title)+" "+c.Type)
	}
	b.WriteString(strings.Join(cols, ","))
	b.WriteString(") DEFAULT CHARSET=utf8mb4;")

	return b.String(), nil
}

func InsertSQL(t TableData) (string, error) {
	if len(t.ColumnNames) == 0 {
		return "", errors.New("empty column")
	}

	if t.DataCount <= 0 || len(t.Args) != t.DataCount*len(t.ColumnNames) {
		return "", fmt.Errorf("got %d args for %d rows of %d columns", len(t.Args), t.DataCount, len(t.ColumnNames))
	}

	cols := make([]string, 0, len(t.ColumnNames))
	for _, c := range t.ColumnNames {
		cols = append(cols, quote(c.Title))
	}

	blank := ",(" + strings.Repeat(",?", len(t.ColumnNames))[1:] + ")"

	return "INSERT INTO " + quote(t.TableName) + "(" + strings.Join(cols, ",") + ") VALUES " +
		strings.Repeat(blank, t.DataCount)[1:] + ";", nil
}

func (d *Sqldb) CreateTable(t TableData) error {
	s, err := CreateTableSQL(t)
	if err != nil {
		return err
	}

	d.logger.Debug("create table", zap.String("sql", s))

	_, err = d.db.Exec(s)

	return err
}

func (d *Sqldb) DropTable(t TableData) error {
	s := "DROP TABLE IF EXISTS " + quote(t.TableName)

	d.logger.Debug("drop table", zap.String("sql", s))

	_, err := d.db.Exec(s)

	return err
}

func (d *Sqldb) Insert(t TableData) error {
	s, err := InsertSQL(t)
	if err != nil {
		return err
	}

	d.logger.Debug("insert table", zap.String("sql", s))

	_, err = d.db.Exec(s, t.Args...)

	return err
}
