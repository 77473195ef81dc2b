package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	usersRegistered = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Users created on their first /start.",
	})
	referralsCredited = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "referrals_credited_total",
		Help:      "Referral bonuses paid to referrers.",
	})
	materialsSaved = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "materials_saved_total",
		Help:      "Materials saved by submission path.",
	}, []string{"source"})
	commandsReceived = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "telegram",
		Name:      "commands_total",
		Help:      "Slash commands received, by command.",
	}, []string{"command"})
	adminCommands = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "telegram",
		Name:      "admin_commands_total",
		Help:      "Admin command attempts, by command and authorization result.",
	}, []string{"command", "status"})
	rateLimited = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "telegram",
		Name:      "rate_limited_total",
		Help:      "Commands and callbacks refused by the per-user limiter.",
	})
	webhookUpdates = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "webhook",
		Name:      "updates_total",
		Help:      "Updates handled by the webhook, by result (ok, error, ignored, panic, rejected, malformed).",
	}, []string{"result"})
)

func IncUsersRegistered()  { usersRegistered.Inc() }
func IncReferralCredited() { referralsCredited.Inc() }

// IncMaterialSaved counts a save by source: explicit or auto.
func IncMaterialSaved(source string) { materialsSaved.WithLabelValues(norm(source)).Inc() }

func IncTelegramCommand(command string) { commandsReceived.WithLabelValues(norm(command)).Inc() }

// IncAdminCommand records an admin command attempt; status is authorized or unauthorized.
func IncAdminCommand(command, status string) {
	adminCommands.WithLabelValues(norm(command), norm(status)).Inc()
}

func IncRateLimitTriggered()        { rateLimited.Inc() }
func IncWebhookUpdate(result string) { webhookUpdates.WithLabelValues(norm(result)).Inc() }
