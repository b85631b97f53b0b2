package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

// fakeJournal — журнал запусков в памяти для воспроизведения без базы.
type fakeJournal struct {
	steps  map[string]bool
	wakeAt time.Time
	asleep bool
}

func newFakeJournal() *fakeJournal {
	return &fakeJournal{steps: make(map[string]bool)}
}

func (j *fakeJournal) SleepRun(_ context.Context, _ string, wakeAt time.Time) error {
	j.wakeAt = wakeAt
	j.asleep = true
	return nil
}

func (j *fakeJournal) IsStepDone(_ context.Context, _, stepID string) (bool, error) {
	return j.steps[stepID], nil
}

func (j *fakeJournal) MarkStepDone(_ context.Context, _, stepID string) error {
	j.steps[stepID] = true
	return nil
}

type readerStub struct {
	info  *models.ReminderInfo
	err   error
	calls int
	// onRead позволяет менять состояние подписки между пробуждениями
	onRead func(call int, info *models.ReminderInfo)
}

func (r *readerStub) ReadReminderInfo(context.Context, int) (*models.ReminderInfo, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	info := *r.info
	if r.onRead != nil {
		r.onRead(r.calls, &info)
	}
	return &info, nil
}

type publisherStub struct {
	published []models.ReminderInfo
	err       error
}

func (p *publisherStub) PublishReminder(info models.ReminderInfo) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, info)
	return nil
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// runToCompletion гоняет запуск через циклы сон-пробуждение на виртуальных
// часах: каждый ErrSuspended переводит часы на wake_at и воспроизводит
// запуск с начала, как это делает исполнитель.
func runToCompletion(t *testing.T, reader *readerStub, publisher *publisherStub,
	start time.Time) (string, []time.Time) {
	t.Helper()

	clock := start
	journal := newFakeJournal()
	workflow := NewWorkflow(reader, publisher, slog.New(discardHandler{}))
	workflow.now = func() time.Time { return clock }

	var wakeups []time.Time
	for range 10 {
		eng := NewDurableEngine(journal, "run-1")
		eng.now = workflow.now
		result, err := workflow.Run(context.Background(), eng, 1)
		if errors.Is(err, ErrSuspended) {
			require.True(t, journal.asleep)
			clock = journal.wakeAt
			journal.asleep = false
			wakeups = append(wakeups, clock)
			continue
		}
		require.NoError(t, err)
		return result, wakeups
	}
	t.Fatal("workflow did not complete")
	return "", nil
}

func TestWorkflowSendsAllReminders(t *testing.T) {
	reader := &readerStub{info: &models.ReminderInfo{
		SubscriptionID:   1,
		SubscriptionName: "Netflix",
		Status:           models.StatusActive,
		RenewalDate:      day("2025-06-30"),
		UserName:         "Alice",
		Email:            "alice@example.com",
	}}
	publisher := &publisherStub{}

	result, wakeups := runToCompletion(t, reader, publisher, day("2025-06-01"))

	assert.Equal(t, "all reminders sent", result)
	assert.Equal(t, []time.Time{
		day("2025-06-23"), day("2025-06-25"), day("2025-06-28"), day("2025-06-29"),
	}, wakeups)
	require.Len(t, publisher.published, 4)
	var days []int
	for _, msg := range publisher.published {
		days = append(days, msg.DaysBefore)
	}
	assert.Equal(t, []int{7, 5, 2, 1}, days)
}

func TestWorkflowStopsWhenSubscriptionDeactivated(t *testing.T) {
	reader := &readerStub{
		info: &models.ReminderInfo{
			SubscriptionID: 1,
			Status:         models.StatusActive,
			RenewalDate:    day("2025-06-30"),
		},
		// после первого пробуждения подписка отменена
		onRead: func(call int, info *models.ReminderInfo) {
			if call > 2 {
				info.Status = models.StatusCanceled
			}
		},
	}
	publisher := &publisherStub{}

	result, _ := runToCompletion(t, reader, publisher, day("2025-06-01"))

	assert.Equal(t, "subscription status is canceled", result)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, 7, publisher.published[0].DaysBefore)
}

func TestWorkflowSkipsPassedRenewalDate(t *testing.T) {
	reader := &readerStub{info: &models.ReminderInfo{
		SubscriptionID: 1,
		Status:         models.StatusActive,
		RenewalDate:    day("2025-05-01"),
	}}
	publisher := &publisherStub{}

	result, wakeups := runToCompletion(t, reader, publisher, day("2025-06-01"))

	assert.Equal(t, "renewal date has passed", result)
	assert.Empty(t, wakeups)
	assert.Empty(t, publisher.published)
}

func TestWorkflowMissingSubscription(t *testing.T) {
	reader := &readerStub{err: apperr.ErrNotFound}
	publisher := &publisherStub{}

	result, _ := runToCompletion(t, reader, publisher, day("2025-06-01"))

	assert.Equal(t, "subscription not found", result)
	assert.Empty(t, publisher.published)
}

func TestWorkflowStartedLateSkipsEarlyCheckpoints(t *testing.T) {
	reader := &readerStub{info: &models.ReminderInfo{
		SubscriptionID: 1,
		Status:         models.StatusActive,
		RenewalDate:    day("2025-06-30"),
	}}
	publisher := &publisherStub{}

	// первые две контрольные точки уже в прошлом
	result, wakeups := runToCompletion(t, reader, publisher, day("2025-06-27"))

	assert.Equal(t, "all reminders sent", result)
	assert.Equal(t, []time.Time{day("2025-06-28"), day("2025-06-29")}, wakeups)
	require.Len(t, publisher.published, 2)
	assert.Equal(t, 2, publisher.published[0].DaysBefore)
	assert.Equal(t, 1, publisher.published[1].DaysBefore)
}

func TestWorkflowSkipsCheckpointPassedSameDay(t *testing.T) {
	reader := &readerStub{info: &models.ReminderInfo{
		SubscriptionID: 1,
		Status:         models.StatusActive,
		RenewalDate:    day("2025-06-30"),
	}}
	publisher := &publisherStub{}

	// точка за два дня была сегодня в полночь и уже прошла:
	// напоминание не отправляется задним числом
	result, wakeups := runToCompletion(t, reader, publisher, day("2025-06-28").Add(9*time.Hour))

	assert.Equal(t, "all reminders sent", result)
	assert.Equal(t, []time.Time{day("2025-06-29")}, wakeups)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, 1, publisher.published[0].DaysBefore)
}

func TestWorkflowFiresInNonUTCZone(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	reader := &readerStub{info: &models.ReminderInfo{
		SubscriptionID: 1,
		Status:         models.StatusActive,
		RenewalDate:    day("2025-06-30"),
	}}
	publisher := &publisherStub{}

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, loc)
	journal := newFakeJournal()
	workflow := NewWorkflow(reader, publisher, slog.New(discardHandler{}))
	workflow.now = func() time.Time { return clock }

	for range 10 {
		eng := NewDurableEngine(journal, "run-1")
		eng.now = workflow.now
		result, err := workflow.Run(context.Background(), eng, 1)
		if errors.Is(err, ErrSuspended) {
			// исполнитель просыпается чуть позже wake_at, часы идут в MSK
			clock = journal.wakeAt.In(loc).Add(time.Minute)
			journal.asleep = false
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, "all reminders sent", result)
		require.Len(t, publisher.published, 4)
		var days []int
		for _, msg := range publisher.published {
			days = append(days, msg.DaysBefore)
		}
		assert.Equal(t, []int{7, 5, 2, 1}, days)
		return
	}
	t.Fatal("workflow did not complete")
}

func TestWorkflowReplayDoesNotRepeatSteps(t *testing.T) {
	reader := &readerStub{info: &models.ReminderInfo{
		SubscriptionID: 1,
		Status:         models.StatusActive,
		RenewalDate:    day("2025-06-30"),
	}}
	publisher := &publisherStub{}
	clock := day("2025-06-28")
	// запуск проспал до точек 7, 5 и 2 дней и отправил их напоминания
	journal := newFakeJournal()
	for _, step := range []string{
		"sleep-7-day", "reminder-7-day",
		"sleep-5-day", "reminder-5-day",
		"sleep-2-day", "reminder-2-day",
	} {
		journal.steps[step] = true
	}

	workflow := NewWorkflow(reader, publisher, slog.New(discardHandler{}))
	workflow.now = func() time.Time { return clock }
	eng := NewDurableEngine(journal, "run-1")
	eng.now = workflow.now

	// воспроизведение после рестарта: выполненные шаги пропускаются,
	// запуск засыпает до последней точки
	_, err := workflow.Run(context.Background(), eng, 1)
	require.ErrorIs(t, err, ErrSuspended)
	assert.Empty(t, publisher.published)

	clock = journal.wakeAt
	result, err := workflow.Run(context.Background(), eng, 1)
	require.NoError(t, err)
	assert.Equal(t, "all reminders sent", result)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, 1, publisher.published[0].DaysBefore)
}

func TestWorkflowPublishFailureFailsRun(t *testing.T) {
	reader := &readerStub{info: &models.ReminderInfo{
		SubscriptionID: 1,
		Status:         models.StatusActive,
		RenewalDate:    day("2025-06-30"),
	}}
	publisher := &publisherStub{err: errors.New("broker unavailable")}
	clock := day("2025-06-28").Add(12 * time.Hour)
	journal := newFakeJournal()

	workflow := NewWorkflow(reader, publisher, slog.New(discardHandler{}))
	workflow.now = func() time.Time { return clock }
	eng := NewDurableEngine(journal, "run-1")
	eng.now = workflow.now

	_, err := workflow.Run(context.Background(), eng, 1)
	require.ErrorIs(t, err, ErrSuspended)

	clock = journal.wakeAt
	_, err = workflow.Run(context.Background(), eng, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSuspended)
}
