package db

import (
	"context"
	"fmt"
)

var demoTeams = []string{"alpha", "bravo", "charlie", "delta"}

// SeedDemo fills s with a keyed people table of n rows and an unkeyed
// teams table.
func SeedDemo(ctx context.Context, s *SQLite, n int) error {
	stmts := []Statement{
		{SQL: `CREATE TABLE people (
			id    INTEGER PRIMARY KEY,
			name  VARCHAR(40) NOT NULL,
			team  TEXT NOT NULL,
			age   INTEGER,
			email TEXT
		)`},
		{SQL: `CREATE TABLE teams (name TEXT, lead TEXT)`},
	}
	for i := range n {
		stmts = append(stmts, Statement{
			SQL: `INSERT INTO people (id, name, team, age, email) VALUES (?, ?, ?, ?, ?)`,
			Args: []any{
				i + 1,
				fmt.Sprintf("person %04d", i+1),
				demoTeams[i%len(demoTeams)],
				20 + i%45,
				fmt.Sprintf("p%04d@example.com", i+1),
			},
		})
	}
	for i, t := range demoTeams {
		stmts = append(stmts, Statement{
			SQL:  `INSERT INTO teams (name, lead) VALUES (?, ?)`,
			Args: []any{t, fmt.Sprintf("person %04d", i+1)},
		})
	}
	if err := s.Apply(ctx, stmts); err != nil {
		return fmt.Errorf("seed demo: %w", err)
	}
	return nil
}
