package persist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

func TestDialectFor(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"postgres", "postgres", false},
		{"postgresql", "postgres", false},
		{"pg", "postgres", false},
		{"mysql", "mysql", false},
		{"mariadb", "mysql", false},
		{"sqlite", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := dialectFor(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if d.name != tt.want {
				t.Errorf("got %q, want %q", d.name, tt.want)
			}
		})
	}
}

func TestDialectQueries(t *testing.T) {
	pg := &SQLBackend{dialect: postgresDialect, table: "todolist_snapshots"}
	if got := pg.query(pg.dialect.selectData); got != `SELECT data FROM "todolist_snapshots" WHERE name = $1` {
		t.Errorf("postgres select: %s", got)
	}
	if got := pg.query(pg.dialect.upsert); !strings.Contains(got, `ON CONFLICT (name)`) || !strings.Contains(got, `"todolist_snapshots"`) {
		t.Errorf("postgres upsert: %s", got)
	}

	my := &SQLBackend{dialect: mysqlDialect, table: "snaps"}
	if got := my.query(my.dialect.selectData); got != "SELECT data FROM `snaps` WHERE name = ?" {
		t.Errorf("mysql select: %s", got)
	}
	if got := my.query(my.dialect.upsert); !strings.Contains(got, "ON DUPLICATE KEY UPDATE") {
		t.Errorf("mysql upsert: %s", got)
	}
	if got := my.query(my.dialect.createTable); !strings.Contains(got, "LONGBLOB") {
		t.Errorf("mysql create: %s", got)
	}
}

func TestTableNameValidation(t *testing.T) {
	tests := []struct {
		table string
		ok    bool
	}{
		{"todolist_snapshots", true},
		{"_t1", true},
		{"1table", false},
		{"snap; DROP TABLE x", false},
		{"a-b", false},
		{strings.Repeat("a", 64), false},
	}
	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			if got := tableNamePattern.MatchString(tt.table); got != tt.ok {
				t.Errorf("got %v, want %v", got, tt.ok)
			}
		})
	}
}

func TestDescribeDSN(t *testing.T) {
	if got := describePostgresDSN("postgres://app:hunter2@db:5432/todo?sslmode=disable"); strings.Contains(got, "hunter2") {
		t.Errorf("postgres password leaked: %s", got)
	}
	if got := describePostgresDSN("host=db user=app password=hunter2"); strings.Contains(got, "hunter2") {
		t.Errorf("postgres kv password leaked: %s", got)
	}
	got := describeMySQLDSN("app:hunter2@tcp(db:3306)/todo")
	if strings.Contains(got, "hunter2") || !strings.Contains(got, "db:3306") {
		t.Errorf("mysql describe: %s", got)
	}
}

func TestOpenSQLRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	if _, err := OpenSQL(ctx, "oracle", "dsn", "", ""); err == nil {
		t.Error("expected error for unknown dialect")
	}
	if _, err := OpenSQL(ctx, "postgres", "", "", ""); err == nil {
		t.Error("expected error for empty dsn")
	}
	if _, err := OpenSQL(ctx, "mysql", "not a dsn", "", ""); err == nil {
		t.Error("expected error for malformed mysql dsn")
	}
}

// Integration tests run against real servers when a DSN is provided.
func TestSQLBackendIntegration(t *testing.T) {
	cases := []struct {
		dialect string
		env     string
	}{
		{"postgres", "TODOLIST_TEST_POSTGRES_DSN"},
		{"mysql", "TODOLIST_TEST_MYSQL_DSN"},
	}
	for _, tc := range cases {
		t.Run(tc.dialect, func(t *testing.T) {
			dsn := os.Getenv(tc.env)
			if dsn == "" {
				t.Skipf("%s not set", tc.env)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			table := fmt.Sprintf("todolist_test_%d", time.Now().UnixNano())
			b, err := OpenSQL(ctx, tc.dialect, dsn, table, "")
			if err != nil {
				t.Fatalf("OpenSQL: %v", err)
			}
			defer func() {
				_, _ = b.db.ExecContext(context.Background(), "DROP TABLE "+b.dialect.quote(table))
				b.Close()
			}()

			if _, err := b.LoadSnapshot(ctx); !errors.Is(err, ErrNoSnapshot) {
				t.Fatalf("empty load: got %v", err)
			}
			for _, payload := range []string{"first", "second"} {
				if err := b.SaveSnapshot(ctx, []byte(payload)); err != nil {
					t.Fatalf("save: %v", err)
				}
				got, err := b.LoadSnapshot(ctx)
				if err != nil || string(got) != payload {
					t.Fatalf("load: %q, %v", got, err)
				}
			}
		})
	}
}
