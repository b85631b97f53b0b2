// Package services содержит бизнес-логику для управления подписками:
// валидацию и нормализацию записей, проверки владения, кеширование
// и best-effort задачи после фиксации (триггер workflow напоминаний,
// письмо-подтверждение).
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/renewal"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	// CreateSubscription добавляет новую подписку и возвращает её ID.
	CreateSubscription(ctx context.Context, sub models.Subscription) (int, error)
	// ReadSubscription возвращает подписку по ID.
	ReadSubscription(ctx context.Context, id int) (*models.Subscription, error)
	// UpdateSubscription обновляет данные подписки по ID.
	UpdateSubscription(ctx context.Context, sub models.Subscription, id int) (int, error)
	// RemoveSubscription удаляет подписку по ID и возвращает количество удалённых записей.
	RemoveSubscription(ctx context.Context, id int) (int, error)
	// ListSubscriptionsByUser возвращает все подписки пользователя.
	ListSubscriptionsByUser(ctx context.Context, userUID string) ([]*models.Subscription, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// ReminderTrigger ставит durable-запуск workflow напоминаний для подписки.
type ReminderTrigger interface {
	Trigger(ctx context.Context, subscriptionID int) error
}

// CreatedNotifier публикует сообщение о созданной подписке в очередь уведомлений.
type CreatedNotifier interface {
	PublishCreated(info models.CreatedInfo) error
}

// PostCommitTask — best-effort задача, выполняемая после фиксации записи.
// Ошибка задачи логируется и никогда не влияет на результат операции.
type PostCommitTask struct {
	Name string
	Run  func(ctx context.Context) error
}

// SubscriptionService реализует бизнес-логику работы с подписками.
type SubscriptionService struct {
	repo     SubscriptionRepository
	cache    Cache
	trigger  ReminderTrigger
	notifier CreatedNotifier
	log      *slog.Logger
	now      func() time.Time
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, cache Cache,
	trigger ReminderTrigger, notifier CreatedNotifier, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:     repo,
		cache:    cache,
		trigger:  trigger,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// allowed перечисления для доменной валидации после нормализации.
var (
	allowedFrequencies = map[string]bool{
		models.FrequencyDaily:   true,
		models.FrequencyWeekly:  true,
		models.FrequencyMonthly: true,
		models.FrequencyYearly:  true,
	}
	allowedCategories = map[string]bool{
		models.CategoryBasic:         true,
		models.CategoryPremium:       true,
		models.CategoryEnterprise:    true,
		models.CategoryEntertainment: true,
	}
)

// prepareForSave нормализует запись и применяет все правила жизненного
// цикла перед записью: проверку ограничений полей, вывод даты продления
// и статуса expired. Возвращает ошибку валидации со всеми нарушениями сразу.
func (s *SubscriptionService) prepareForSave(sub *models.Subscription, isCreate bool) error {
	renewal.Normalize(sub)

	var violations []string
	if len(sub.Name) < 2 || len(sub.Name) > 100 {
		violations = append(violations, "subscription name must be between 2 and 100 characters")
	}
	if sub.Price < 0 {
		violations = append(violations, "price must be greater than or equal to 0")
	}
	if !allowedFrequencies[sub.Frequency] {
		violations = append(violations, fmt.Sprintf("frequency %q is not allowed", sub.Frequency))
	}
	if !allowedCategories[sub.Category] {
		violations = append(violations, fmt.Sprintf("category %q is not allowed", sub.Category))
	}
	if sub.PaymentMethod == "" {
		violations = append(violations, "payment method is required")
	}

	now := s.now()
	if isCreate && renewal.Day(sub.StartDate).Before(renewal.Day(now)) {
		violations = append(violations, "start date must be today or in the future")
	}
	if !sub.RenewalDate.IsZero() && !renewal.Day(sub.RenewalDate).After(renewal.Day(sub.StartDate)) {
		violations = append(violations, "renewal date must be after the start date")
	}
	if len(violations) > 0 {
		return apperr.Validation(violations...)
	}

	if err := renewal.DeriveRenewalDate(sub); err != nil {
		return err
	}
	renewal.DeriveStatus(sub, now)
	return nil
}

// Create создает подписку для владельца и возвращает запись вместе со
// списком best-effort задач после фиксации. Владелец всегда берется из
// аутентифицированного вызывающего и не может быть задан в запросе.
func (s *SubscriptionService) Create(ctx context.Context, owner *models.User,
	req models.DummySubscription) (*models.Subscription, []PostCommitTask, error) {
	const op = "subscription.Create"

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, nil, apperr.Validationf("invalid start date: %v", err)
	}
	sub := models.Subscription{
		Name:          req.Name,
		Price:         req.Price,
		Currency:      req.Currency,
		Frequency:     req.Frequency,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		Status:        req.Status,
		StartDate:     startDate,
		UserUID:       owner.UID,
	}
	if req.RenewalDate != "" {
		renewalDate, err := time.Parse("2006-01-02", req.RenewalDate)
		if err != nil {
			return nil, nil, apperr.Validationf("invalid renewal date: %v", err)
		}
		sub.RenewalDate = renewalDate
	}

	if err := s.prepareForSave(&sub, true); err != nil {
		return nil, nil, err
	}

	id, err := s.repo.CreateSubscription(ctx, sub)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	sub.ID = id
	s.log.Info("created new subscription", slog.Int("id", id))

	cacheKey := fmt.Sprintf("subscription:%d", id)
	if err := s.cache.Set(cacheKey, sub, time.Hour); err != nil {
		s.log.Warn("failed to cache subscription", slog.String("key", cacheKey), sl.Err(err))
	}

	created := sub
	tasks := []PostCommitTask{
		{
			Name: "trigger-reminder-workflow",
			Run: func(ctx context.Context) error {
				return s.trigger.Trigger(ctx, created.ID)
			},
		},
		{
			Name: "send-confirmation-email",
			Run: func(_ context.Context) error {
				return s.notifier.PublishCreated(models.CreatedInfo{
					Email:            owner.Email,
					UserName:         owner.Name,
					SubscriptionName: created.Name,
					Price:            created.Price,
					Currency:         created.Currency,
					Frequency:        created.Frequency,
					Category:         created.Category,
					RenewalDate:      created.RenewalDate,
				})
			},
		},
	}
	return &sub, tasks, nil
}

// RunPostCommitTasks выполняет задачи после фиксации с изоляцией сбоев:
// ошибка каждой задачи логируется и глотается, операция уже успешна.
func (s *SubscriptionService) RunPostCommitTasks(ctx context.Context, tasks []PostCommitTask) {
	for _, task := range tasks {
		if err := task.Run(ctx); err != nil {
			s.log.Error("post-commit task failed", slog.String("task", task.Name), sl.Err(err))
		}
	}
}

// List возвращает все подписки аутентифицированного вызывающего.
func (s *SubscriptionService) List(ctx context.Context, userUID string) ([]*models.Subscription, error) {
	return s.repo.ListSubscriptionsByUser(ctx, userUID)
}

// ListForUser возвращает подписки указанного пользователя.
// Запросить можно только собственные подписки.
func (s *SubscriptionService) ListForUser(ctx context.Context, caller *models.User,
	targetUID string) ([]*models.Subscription, error) {
	const op = "subscription.ListForUser"
	if caller.UID != targetUID {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrForbidden)
	}
	return s.repo.ListSubscriptionsByUser(ctx, targetUID)
}

// Read возвращает подписку по ID, используя кеш или репозиторий.
// Проверка владения здесь сознательно отсутствует: маршрут детальной
// карточки открыт любому вызывающему, как в исходном API.
func (s *SubscriptionService) Read(ctx context.Context, id int) (*models.Subscription, error) {
	var result *models.Subscription
	cacheKey := fmt.Sprintf("subscription:%d", id)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return result, nil
	}
	result, err = s.repo.ReadSubscription(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", cacheKey), sl.Err(err))
	}
	return result, nil
}

// Update сливает переданные поля с существующей записью, прогоняет весь
// жизненный цикл заново и сохраняет результат. Обновлять может только владелец.
func (s *SubscriptionService) Update(ctx context.Context, caller *models.User, id int,
	req models.DummyUpdateSubscription) (*models.Subscription, error) {
	const op = "subscription.Update"

	existing, err := s.repo.ReadSubscription(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.UserUID != caller.UID {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrForbidden)
	}

	merged := *existing
	if req.Name != "" {
		merged.Name = req.Name
	}
	if req.Price != nil {
		merged.Price = *req.Price
	}
	if req.Currency != "" {
		merged.Currency = req.Currency
	}
	if req.Frequency != "" {
		merged.Frequency = req.Frequency
	}
	if req.Category != "" {
		merged.Category = req.Category
	}
	if req.PaymentMethod != "" {
		merged.PaymentMethod = req.PaymentMethod
	}
	if req.Status != "" {
		merged.Status = req.Status
	}
	if req.StartDate != "" {
		startDate, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return nil, apperr.Validationf("invalid start date: %v", err)
		}
		merged.StartDate = startDate
	}
	if req.RenewalDate != "" {
		renewalDate, err := time.Parse("2006-01-02", req.RenewalDate)
		if err != nil {
			return nil, apperr.Validationf("invalid renewal date: %v", err)
		}
		merged.RenewalDate = renewalDate
	}

	if err := s.prepareForSave(&merged, false); err != nil {
		return nil, err
	}

	if _, err := s.repo.UpdateSubscription(ctx, merged, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("updated subscription in storage", slog.Int("id", id))

	cacheKey := fmt.Sprintf("subscription:%d", id)
	if err := s.cache.Set(cacheKey, merged, time.Hour); err != nil {
		s.log.Warn("failed to cache subscription", slog.String("key", cacheKey), sl.Err(err))
	}
	return &merged, nil
}

// Remove удаляет подписку владельца и инвалидирует кеш.
func (s *SubscriptionService) Remove(ctx context.Context, caller *models.User, id int) error {
	const op = "subscription.Remove"

	existing, err := s.repo.ReadSubscription(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserUID != caller.UID {
		return fmt.Errorf("%s: %w", op, apperr.ErrForbidden)
	}

	cacheKey := fmt.Sprintf("subscription:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), sl.Err(err))
	}

	if _, err := s.repo.RemoveSubscription(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
