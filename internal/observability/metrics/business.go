package metrics

import "time"

func result(ok bool, pass, fail string) string {
	if ok {
		return pass
	}
	return fail
}

// RecordRegistration records a registration attempt.
func RecordRegistration(success bool) {
	RegistrationsTotal.WithLabelValues(result(success, "success", "rejected")).Inc()
}

// RecordLogin records a login attempt.
func RecordLogin(success bool) {
	LoginsTotal.WithLabelValues(result(success, "success", "failure")).Inc()
}

// RecordNoteOperation records a note write. Operation is create, update or delete.
func RecordNoteOperation(operation string) {
	NoteOperationsTotal.WithLabelValues(operation).Inc()
}

// RecordFavoriteOperation records a favorite change. Operation is add or remove.
func RecordFavoriteOperation(operation string) {
	FavoriteOperationsTotal.WithLabelValues(operation).Inc()
}

// RecordArticleImportSuccess records a successful import with the page size.
func RecordArticleImportSuccess(duration time.Duration, size int) {
	ArticleImportsTotal.WithLabelValues("success").Inc()
	ArticleImportDuration.Observe(duration.Seconds())
	ArticleImportSize.Observe(float64(size))
}

// RecordArticleImportFailed records a failed import.
func RecordArticleImportFailed(duration time.Duration) {
	ArticleImportsTotal.WithLabelValues("failure").Inc()
	ArticleImportDuration.Observe(duration.Seconds())
}

// RecordTotals sets the record count gauges.
func RecordTotals(users, articles, notes, favorites int64) {
	UsersTotal.Set(float64(users))
	ArticlesTotal.Set(float64(articles))
	NotesTotal.Set(float64(notes))
	FavoritesTotal.Set(float64(favorites))
}

// RecordStatsRefreshError records a failed stats refresh.
func RecordStatsRefreshError() {
	StatsRefreshErrors.Inc()
}

// RecordDBQuery records the latency of one database call.
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats sets the pool gauges.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
