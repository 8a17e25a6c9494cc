package postgres

import (
	"fmt"
	"strings"

	"wikinotes/internal/repository"
)

// ArticleQueryBuilder builds WHERE clauses for article listings in PostgreSQL.
// This builder is shared between COUNT and SELECT queries to eliminate duplication.
// It uses ILIKE for case-insensitive keyword matching and $N placeholders.
type ArticleQueryBuilder struct{}

// NewArticleQueryBuilder creates a new query builder instance.
func NewArticleQueryBuilder() *ArticleQueryBuilder {
	return &ArticleQueryBuilder{}
}

// BuildWhereClause builds the WHERE clause and arguments for filter.
// Keywords are ANDed; each matches title or description.
// Returns an empty clause if no conditions are provided.
func (qb *ArticleQueryBuilder) BuildWhereClause(filter repository.ArticleFilter, tableAlias string) (clause string, args []any) {
	col := func(name string) string {
		if tableAlias != "" {
			return tableAlias + "." + name
		}
		return name
	}

	var conditions []string
	paramIndex := 1

	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("%s = $%d", col("category"), paramIndex))
		args = append(args, string(*filter.Category))
		paramIndex++
	}

	for _, keyword := range filter.Keywords {
		conditions = append(conditions, fmt.Sprintf("(%s ILIKE $%d OR %s ILIKE $%d)",
			col("title"), paramIndex, col("description"), paramIndex))
		args = append(args, escapeILIKE(keyword))
		paramIndex++
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

var ilikeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeILIKE escapes ILIKE wildcards in keyword and wraps it for substring matching.
func escapeILIKE(keyword string) string {
	return "%" + ilikeEscaper.Replace(keyword) + "%"
}
