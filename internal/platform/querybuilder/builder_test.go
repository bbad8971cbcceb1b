package querybuilder

import (
	"reflect"
	"testing"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "team_name").
		From("rosters").
		Where(Eq("competition_id", "c1"), IsNull("deleted_at")).
		OrderBy("created_at", "id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, team_name FROM rosters WHERE competition_id = $1 AND deleted_at IS NULL ORDER BY created_at, id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if !reflect.DeepEqual(args, []any{"c1"}) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_ForUpdateAndIn(t *testing.T) {
	query, args, err := Select("id").
		From("rosters").
		Where(In("id", []any{"r1", "r2"})).
		OrderBy("id").
		ForUpdate().
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM rosters WHERE id IN ($1, $2) ORDER BY id FOR UPDATE"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if !reflect.DeepEqual(args, []any{"r1", "r2"}) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_MultiRow(t *testing.T) {
	query, args, err := InsertInto("matches").
		Columns("id", "round").
		Values("m1", "1").
		Values("m2", "1").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO matches (id, round) VALUES ($1, $2), ($3, $4) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[2] != "m2" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := InsertInto("matches").Columns("id", "round").Values("m1").ToSQL(); err == nil {
		t.Fatalf("expected column count mismatch error")
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("rosters").
		Set("players", "[]").
		SetExpr("version", "version + ?", 1).
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", "r1"), Expr("version = ?", int64(4))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE rosters SET players = $1, version = version + $2, updated_at = NOW() WHERE id = $3 AND version = $4"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if !reflect.DeepEqual(args, []any{"[]", 1, "r1", int64(4)}) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("matches").
		Where(Eq("competition_id", "c1"), Eq("status", "scheduled")).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM matches WHERE competition_id = $1 AND status = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := DeleteFrom("matches").ToSQL(); err == nil {
		t.Fatalf("expected error for unconditional delete")
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		ID     string `db:"id"`
		Name   string `db:"name"`
		Ignore string `db:"-"`
		hidden string
	}

	query, args, err := InsertModel("competitions", row{ID: "c1", Name: "Spring Cup", hidden: "x"}, "")
	if err != nil {
		t.Fatalf("insert model: %v", err)
	}
	if query != "INSERT INTO competitions (id, name) VALUES ($1, $2)" {
		t.Fatalf("unexpected query: %s", query)
	}
	if !reflect.DeepEqual(args, []any{"c1", "Spring Cup"}) {
		t.Fatalf("unexpected args: %+v", args)
	}
}
