package mware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/subscription-tracker/internal/config"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
)

// botMarkers — подстроки User-Agent, по которым запрос считается
// автоматизированным. Поисковые боты из allowedBots пропускаются.
var botMarkers = []string{"bot", "crawler", "spider", "scraper", "curl/", "python-requests"}

var allowedBots = []string{"googlebot", "bingbot", "duckduckbot", "yandexbot"}

// visitorLimiters хранит ограничитель частоты на каждый IP-адрес.
type visitorLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newVisitorLimiters(rps float64, burst int) *visitorLimiters {
	return &visitorLimiters{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (v *visitorLimiters) get(ip string) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()
	limiter, ok := v.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(v.rps, v.burst)
		v.limiters[ip] = limiter
	}
	return limiter
}

// isBot сообщает, похож ли User-Agent на автоматизированный клиент.
// Пустой User-Agent трактуется как "unknown" и тоже блокируется.
func isBot(userAgent string) bool {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	if ua == "" {
		ua = "unknown"
	}
	for _, allowed := range allowedBots {
		if strings.Contains(ua, allowed) {
			return false
		}
	}
	if ua == "unknown" {
		return true
	}
	for _, marker := range botMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}

// Protection возвращает middleware защиты всех маршрутов API:
// ограничение частоты запросов на IP и фильтр автоматизированных клиентов.
// Превышение лимита отвечает 429, обнаруженный бот получает 403.
func Protection(cfg config.Protection, log *slog.Logger) func(http.Handler) http.Handler {
	visitors := newVisitorLimiters(cfg.RequestsPerSecond, cfg.Burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "mware.Protection"

			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !visitors.get(ip).Allow() {
				log.Warn("rate limit exceeded",
					slog.String("op", op), slog.String("ip", ip))
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("rate limit exceeded"))

				return
			}
			if isBot(r.UserAgent()) {
				log.Warn("bot detected",
					slog.String("op", op),
					slog.String("ip", ip),
					slog.String("user_agent", r.UserAgent()))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("bot detected"))

				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
