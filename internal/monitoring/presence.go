package monitoring

import (
	"database/sql"
	"time"

	"github.com/aviramh/gradecast-be/internal/auth"
	"github.com/aviramh/gradecast-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// PresenceSweeper periodically marks users offline once their last login
// is older than the session token lifetime. Stateless tokens give no
// disconnect signal, so presence has to decay.
type PresenceSweeper struct {
	db       *sql.DB
	notifier services.Notifier
	cron     *cron.Cron
}

// NewPresenceSweeper creates a new sweeper.
func NewPresenceSweeper(db *sql.DB, notifier services.Notifier) *PresenceSweeper {
	return &PresenceSweeper{db: db, notifier: notifier, cron: cron.New()}
}

// Run schedules the sweep and starts the cron loop. It returns
// immediately; the cron runs on its own goroutine.
func (p *PresenceSweeper) Run() error {
	log.Info().Msg("Starting presence sweeper...")
	if _, err := p.cron.AddFunc("@every 10m", p.sweep); err != nil {
		return err
	}
	p.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for an in-flight sweep to finish.
func (p *PresenceSweeper) Stop() {
	log.Info().Msg("Stopping presence sweeper.")
	<-p.cron.Stop().Done()
}

func (p *PresenceSweeper) sweep() {
	cutoff := time.Now().Add(-auth.TokenLifetime)

	rows, err := p.db.Query("SELECT id FROM users WHERE online = 1 AND (last_login IS NULL OR last_login < ?)", cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Presence sweep query failed")
		return
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			log.Error().Err(err).Msg("Presence sweep scan failed")
			return
		}
		stale = append(stale, id)
	}

	for _, id := range stale {
		if _, err := p.db.Exec("UPDATE users SET online = 0 WHERE id = ?", id); err != nil {
			log.Error().Err(err).Str("user_id", id).Msg("Failed to mark user offline")
			continue
		}
		if p.notifier != nil {
			p.notifier.BroadcastEvent("user.offline", map[string]string{"id": id})
		}
	}

	if len(stale) > 0 {
		log.Info().Int("count", len(stale)).Msg("Marked stale sessions offline")
	}
}
