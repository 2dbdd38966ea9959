package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"rekod.my/famvault/internal/entity"
	devicerepo "rekod.my/famvault/internal/modules/device/repository"
	notifsvc "rekod.my/famvault/internal/modules/notification/service"
	personrepo "rekod.my/famvault/internal/modules/person/repository"
	userrepo "rekod.my/famvault/internal/modules/user/repository"
	"rekod.my/famvault/pkg/push"
)

// BirthdayJob notifies every user about birthdays in the records. One run
// covers a single calendar day, so the morning run announces today's
// birthdays and the evening run reminds about tomorrow's.
type BirthdayJob struct {
	people        personrepo.PersonRepository
	users         userrepo.UserRepository
	notifications notifsvc.NotificationService
	devices       devicerepo.DeviceRepository
	pusher        *push.Client
}

func NewBirthdayJob(
	people personrepo.PersonRepository,
	users userrepo.UserRepository,
	notifications notifsvc.NotificationService,
	devices devicerepo.DeviceRepository,
	pusher *push.Client,
) *BirthdayJob {
	return &BirthdayJob{
		people:        people,
		users:         users,
		notifications: notifications,
		devices:       devices,
		pusher:        pusher,
	}
}

func (j *BirthdayJob) RunToday(ctx context.Context) error {
	return j.run(ctx, time.Now(), "today")
}

func (j *BirthdayJob) RunTomorrow(ctx context.Context) error {
	return j.run(ctx, time.Now().AddDate(0, 0, 1), "tomorrow")
}

func (j *BirthdayJob) run(ctx context.Context, day time.Time, label string) error {
	people, err := j.people.UpcomingBirthdays(ctx, day, 0)
	if err != nil {
		return fmt.Errorf("birthday lookup: %w", err)
	}
	if len(people) == 0 {
		return nil
	}

	userIDs, err := j.users.FindAllIDs(ctx)
	if err != nil {
		return fmt.Errorf("recipient lookup: %w", err)
	}

	for _, person := range people {
		title := fmt.Sprintf("Birthday %s", label)
		age := day.Year() - person.DateOfBirth.Year()
		message := fmt.Sprintf("%s turns %d %s.", person.Name, age, label)

		notifications := make([]*entity.Notification, 0, len(userIDs))
		for _, userID := range userIDs {
			personID := person.ID
			notifications = append(notifications, &entity.Notification{
				UserID:   userID,
				Type:     entity.NotificationTypeBirthday,
				Title:    title,
				Message:  message,
				PersonID: &personID,
			})
		}
		if err := j.notifications.CreateBatch(ctx, notifications); err != nil {
			return fmt.Errorf("store birthday notifications: %w", err)
		}

		j.sendPush(ctx, title, message)
	}

	log.Printf("scheduler: birthday %s run announced %d people to %d users", label, len(people), len(userIDs))
	return nil
}

// sendPush fans out to every registered device. Delivery failures are
// logged; the stored notifications already carry the information.
func (j *BirthdayJob) sendPush(ctx context.Context, title, body string) {
	if j.pusher == nil {
		return
	}
	tokens, err := j.devices.AllTokens(ctx)
	if err != nil {
		log.Printf("scheduler: token lookup failed: %v", err)
		return
	}
	if len(tokens) == 0 {
		return
	}
	messages := make([]push.Message, 0, len(tokens))
	for _, token := range tokens {
		messages = append(messages, push.Message{To: token, Title: title, Body: body})
	}
	if err := j.pusher.Send(ctx, messages); err != nil {
		log.Printf("scheduler: push delivery failed: %v", err)
	}
}

// Scheduler owns the cron runner for background jobs.
type Scheduler struct {
	cron *cron.Cron
	job  *BirthdayJob
}

func New(job *BirthdayJob) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		job:  job,
	}
}

// Start registers the birthday jobs and begins the cron loop.
func (s *Scheduler) Start(todaySpec, tomorrowSpec string) error {
	if _, err := s.cron.AddFunc(todaySpec, func() {
		if err := s.job.RunToday(context.Background()); err != nil {
			log.Printf("scheduler: birthday today run failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule birthday today: %w", err)
	}

	if _, err := s.cron.AddFunc(tomorrowSpec, func() {
		if err := s.job.RunTomorrow(context.Background()); err != nil {
			log.Printf("scheduler: birthday tomorrow run failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule birthday tomorrow: %w", err)
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
