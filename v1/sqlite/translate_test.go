package sqlite

import (
	"testing"
	"time"

	"github.com/cipworks/common/v1/dbclient"
)

func TestTranslate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			"markers become question marks",
			"INSERT INTO raw_log (topic, data, ts) VALUES (%s, %s, %s)",
			"INSERT INTO `raw_log` (topic, data, ts) VALUES (?, ?, ?)",
		},
		{
			"dotted table name after from is quoted",
			"SELECT * FROM public.run WHERE id = %s",
			"SELECT * FROM `public.run` WHERE id = ?",
		},
		{
			"join and update targets are quoted",
			"UPDATE public.run SET station = %s FROM public.station JOIN public.gw",
			"UPDATE `public.run` SET station = ? FROM `public.station` JOIN `public.gw`",
		},
		{
			"create table if not exists",
			"CREATE TABLE IF NOT EXISTS public.run (id BIGSERIAL PRIMARY KEY, ok BOOLEAN, ts TIMESTAMP WITH TIME ZONE)",
			"CREATE TABLE IF NOT EXISTS `public.run` (id INTEGER PRIMARY KEY, ok INTEGER, ts TEXT)",
		},
		{
			"create table without qualifier",
			"CREATE TABLE run (id SERIAL, created TIMESTAMP)",
			"CREATE TABLE `run` (id INTEGER, created TEXT)",
		},
		{
			"drop table if exists",
			"DROP TABLE IF EXISTS public.run",
			"DROP TABLE IF EXISTS `public.run`",
		},
		{
			"timestamptz and timestamp without time zone",
			"CREATE TABLE t (a TIMESTAMPTZ, b TIMESTAMP WITHOUT TIME ZONE)",
			"CREATE TABLE `t` (a TEXT, b TEXT)",
		},
		{
			"lowercase keywords",
			"select ts from public.run where ok = %s",
			"select ts from `public.run` where ok = ?",
		},
		{
			"already quoted identifier stays untouched",
			"SELECT * FROM `public.run`",
			"SELECT * FROM `public.run`",
		},
		{
			"subquery after from is not quoted",
			"SELECT * FROM (SELECT id FROM run) sub",
			"SELECT * FROM (SELECT id FROM `run`) sub",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := translate(tc.in); got != tc.want {
				t.Errorf("translate(%q)\n got  %q\n want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTranslateIsIdempotentForRoundTrip(t *testing.T) {
	q := "SELECT * FROM public.run WHERE id = %s"
	once := translate(q)
	twice := translate(once)
	if once != twice {
		t.Errorf("second translation changed the query:\n once  %q\n twice %q", once, twice)
	}
}

func TestStripReturning(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			"trailing returning",
			"INSERT INTO `run` (station) VALUES (?) RETURNING id",
			"INSERT INTO `run` (station) VALUES (?)",
		},
		{
			"returning with trailing semicolon",
			"INSERT INTO `run` (station) VALUES (?) RETURNING id;",
			"INSERT INTO `run` (station) VALUES (?)",
		},
		{
			"lowercase returning",
			"insert into `run` (station) values (?) returning id",
			"insert into `run` (station) values (?)",
		},
		{
			"no returning clause",
			"INSERT INTO `run` (station) VALUES (?)",
			"INSERT INTO `run` (station) VALUES (?)",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripReturning(tc.in); got != tc.want {
				t.Errorf("stripReturning(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestHasReturning(t *testing.T) {
	if !hasReturning("INSERT INTO t (a) VALUES (?) RETURNING id") {
		t.Error("hasReturning should detect an uppercase clause")
	}
	if !hasReturning("insert into t (a) values (?) returning id") {
		t.Error("hasReturning should detect a lowercase clause")
	}
	if hasReturning("INSERT INTO t (a) VALUES (?)") {
		t.Error("hasReturning should not fire without the clause")
	}
}

func TestBindValuesRendering(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 123456000, time.UTC)

	args := bindValues([]dbclient.Param{
		dbclient.Timestamp(ts),
		dbclient.Date(ts),
		dbclient.Bool(true),
		dbclient.Bool(false),
		dbclient.Text("x"),
		dbclient.Null(),
	})

	if args[0] != "2026-03-14 09:26:53.123456" {
		t.Errorf("timestamp rendered as %v", args[0])
	}
	if args[1] != "2026-03-14" {
		t.Errorf("date rendered as %v", args[1])
	}
	if args[2] != int64(1) || args[3] != int64(0) {
		t.Errorf("bools rendered as %v, %v", args[2], args[3])
	}
	if args[4] != "x" {
		t.Errorf("text rendered as %v", args[4])
	}
	if args[5] != nil {
		t.Errorf("null rendered as %v", args[5])
	}
}

func TestBindValuesTimestampOrderIsLexicographic(t *testing.T) {
	early := dbclient.Timestamp(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	late := dbclient.Timestamp(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))

	args := bindValues([]dbclient.Param{early, late})
	if args[0].(string) >= args[1].(string) {
		t.Errorf("rendered timestamps must sort chronologically: %v >= %v", args[0], args[1])
	}
}
