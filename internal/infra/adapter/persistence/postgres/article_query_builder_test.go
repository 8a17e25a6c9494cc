package postgres_test

import (
	"testing"

	"wikinotes/internal/domain/entity"
	"wikinotes/internal/infra/adapter/persistence/postgres"
	"wikinotes/internal/repository"
)

/* ──────────────────────────── BuildWhereClause Tests ──────────────────────────── */

func TestArticleQueryBuilder_BuildWhereClause_NoConditions(t *testing.T) {
	builder := postgres.NewArticleQueryBuilder()
	clause, args := builder.BuildWhereClause(repository.ArticleFilter{}, "")

	if clause != "" {
		t.Errorf("clause should be empty, got %q", clause)
	}
	if len(args) != 0 {
		t.Errorf("args should be empty, got %v", args)
	}
}

func TestArticleQueryBuilder_BuildWhereClause_Category(t *testing.T) {
	builder := postgres.NewArticleQueryBuilder()
	c := entity.CategoryHistory
	clause, args := builder.BuildWhereClause(repository.ArticleFilter{Category: &c}, "")

	if want := "WHERE category = $1"; clause != want {
		t.Errorf("clause = %q, want %q", clause, want)
	}
	if len(args) != 1 || args[0] != "History" {
		t.Errorf("args = %v, want [History]", args)
	}
}

func TestArticleQueryBuilder_BuildWhereClause_CategoryAndKeywords(t *testing.T) {
	builder := postgres.NewArticleQueryBuilder()
	c := entity.CategoryPeople
	clause, args := builder.BuildWhereClause(repository.ArticleFilter{
		Category: &c,
		Keywords: []string{"Ada", "Lovelace"},
	}, "a")

	want := "WHERE a.category = $1 AND (a.title ILIKE $2 OR a.description ILIKE $2) AND (a.title ILIKE $3 OR a.description ILIKE $3)"
	if clause != want {
		t.Errorf("clause = %q, want %q", clause, want)
	}
	if len(args) != 3 || args[1] != "%Ada%" || args[2] != "%Lovelace%" {
		t.Errorf("args = %v", args)
	}
}

func TestArticleQueryBuilder_BuildWhereClause_SpecialCharactersEscaped(t *testing.T) {
	builder := postgres.NewArticleQueryBuilder()
	_, args := builder.BuildWhereClause(repository.ArticleFilter{
		Keywords: []string{"100%", "my_var", "path\\file"},
	}, "")

	if len(args) != 3 {
		t.Fatalf("len(args) = %d, want 3", len(args))
	}
	if args[0] != "%100\\%%" {
		t.Errorf("args[0] = %q, want %%100\\%%%%", args[0])
	}
	if args[1] != "%my\\_var%" {
		t.Errorf("args[1] = %q, want %%my\\_var%%", args[1])
	}
	if args[2] != "%path\\\\file%" {
		t.Errorf("args[2] = %q, want %%path\\\\file%%", args[2])
	}
}
