//go:build !integration

package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func scrape(t *testing.T) string {
	t.Helper()
	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rr.Body)
	return string(body)
}

func TestHandlerExposesCollectors(t *testing.T) {
	IncUsersRegistered()
	IncPromotionGroup(" SENT ")
	IncPromotionMessage(false)
	IncTelegramCommand("/Start")

	body := scrape(t)
	for _, want := range []string{
		"promo_bot_users_registered_total",
		`promo_bot_promotion_groups_total{outcome="sent"}`,
		`promo_bot_promotion_messages_total{result="error"}`,
		`promo_bot_telegram_commands_total{command="/start"}`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s in metrics output", want)
		}
	}
	// a second handler over the same registry must not panic on re-registration
	_ = scrape(t)
}

func TestSetDBPoolStats(t *testing.T) {
	SetDBPoolStats(5, 3, 2, 10)
	for state, want := range map[string]float64{"total": 5, "idle": 3, "acquired": 2, "max": 10} {
		if got := testutil.ToFloat64(dbPoolConns.WithLabelValues(state)); got != want {
			t.Errorf("%s: got %v, want %v", state, got, want)
		}
	}
}

func TestCacheRequestLabelsAreNormalised(t *testing.T) {
	before := testutil.ToFloat64(cacheRequests.WithLabelValues("group_list", "hit"))
	IncCacheRequest(" Group_List", "HIT ")
	if got := testutil.ToFloat64(cacheRequests.WithLabelValues("group_list", "hit")); got != before+1 {
		t.Errorf("expected one more hit, got %v (was %v)", got, before)
	}
}
