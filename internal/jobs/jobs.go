// Package jobs runs the periodic CRM batch work: an aggregate report, an
// order reminder pass and a heartbeat. All three are fire-and-forget and
// sit outside the store's transaction boundary.
package jobs

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/alxcrm/crmd/internal/usecase"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type Config struct {
	ReportPath    string // default /tmp/crm_report_log.txt
	RemindersPath string // default /tmp/order_reminders_log.txt
	HeartbeatPath string // default /tmp/crm_heartbeat_log.txt
	ReportSpec    string // default "0 6 * * 1"
	ReminderSpec  string // default "0 8 * * *"
	HeartbeatSpec string // default "@every 5m"
}

func (c *Config) applyDefaults() {
	if c.ReportPath == "" {
		c.ReportPath = "/tmp/crm_report_log.txt"
	}
	if c.RemindersPath == "" {
		c.RemindersPath = "/tmp/order_reminders_log.txt"
	}
	if c.HeartbeatPath == "" {
		c.HeartbeatPath = "/tmp/crm_heartbeat_log.txt"
	}
	if c.ReportSpec == "" {
		c.ReportSpec = "0 6 * * 1"
	}
	if c.ReminderSpec == "" {
		c.ReminderSpec = "0 8 * * *"
	}
	if c.HeartbeatSpec == "" {
		c.HeartbeatSpec = "@every 5m"
	}
}

type Jobs struct {
	stats  *usecase.StatsUC
	orders *usecase.OrderUC
	cfg    Config
	sched  *cron.Cron
}

func New(stats *usecase.StatsUC, orders *usecase.OrderUC, cfg Config) *Jobs {
	cfg.applyDefaults()
	return &Jobs{stats: stats, orders: orders, cfg: cfg}
}

func (j *Jobs) Start() error {
	j.sched = cron.New(cron.WithParser(cronParser))
	entries := []struct {
		spec string
		fn   func()
	}{
		{j.cfg.ReportSpec, func() {
			if err := j.RunReport(context.Background()); err != nil {
				log.Error().Err(err).Msg("report job")
			}
		}},
		{j.cfg.ReminderSpec, func() {
			if _, err := j.RunOrderReminders(context.Background()); err != nil {
				log.Error().Err(err).Msg("reminder job")
			}
		}},
		{j.cfg.HeartbeatSpec, func() { j.RunHeartbeat() }},
	}
	for _, e := range entries {
		if _, err := j.sched.AddFunc(e.spec, e.fn); err != nil {
			return fmt.Errorf("schedule %q: %w", e.spec, err)
		}
	}
	j.sched.Start()
	return nil
}

func (j *Jobs) Stop() {
	if j.sched != nil {
		j.sched.Stop()
	}
}

// RunReport appends one timestamped aggregate line to the report log.
func (j *Jobs) RunReport(ctx context.Context) error {
	customers, err := j.stats.CustomersCount(ctx)
	if err != nil {
		return err
	}
	orders, err := j.stats.OrdersCount(ctx)
	if err != nil {
		return err
	}
	revenue, err := j.stats.OrdersRevenue(ctx)
	if err != nil {
		return err
	}
	line := fmt.Sprintf("%s - Report: %d customers, %d orders, %s revenue",
		time.Now().Format("2006-01-02 15:04:05"), customers, orders, revenue)
	log.Info().Str("line", line).Msg("crm report")
	return appendLines(j.cfg.ReportPath, line)
}

// RunOrderReminders lists orders dated within the last seven days and
// appends one reminder line per order. Returns how many were written.
func (j *Jobs) RunOrderReminders(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	list, err := j.orders.List(ctx, map[string]any{
		"orderDateGte": now.AddDate(0, 0, -7),
		"orderDateLte": now,
	}, "")
	if err != nil {
		return 0, err
	}
	if len(list) == 0 {
		return 0, nil
	}
	stamp := now.Format("2006-01-02T15:04:05Z")
	lines := make([]string, len(list))
	for i, o := range list {
		lines[i] = fmt.Sprintf("%s Reminder for order %s -> %s", stamp, o.ID, o.Customer.Email)
	}
	if err := appendLines(j.cfg.RemindersPath, lines...); err != nil {
		return 0, err
	}
	log.Info().Int("orders", len(list)).Msg("order reminders processed")
	return len(list), nil
}

func (j *Jobs) RunHeartbeat() {
	line := time.Now().Format("02/01/2006-15:04:05") + " CRM is alive"
	if err := appendLines(j.cfg.HeartbeatPath, line); err != nil {
		log.Error().Err(err).Msg("heartbeat")
	}
}

func appendLines(path string, lines ...string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(strings.Join(lines, "\n") + "\n")
	return err
}
