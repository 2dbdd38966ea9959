package service

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"rekod.my/famvault/internal/entity"
	activitysvc "rekod.my/famvault/internal/modules/activity/service"
	"rekod.my/famvault/internal/modules/admin/dto"
	devicerepo "rekod.my/famvault/internal/modules/device/repository"
	documentrepo "rekod.my/famvault/internal/modules/document/repository"
	personrepo "rekod.my/famvault/internal/modules/person/repository"
	userdto "rekod.my/famvault/internal/modules/user/dto"
	userrepo "rekod.my/famvault/internal/modules/user/repository"
	notifsvc "rekod.my/famvault/internal/modules/notification/service"
	"rekod.my/famvault/pkg/apperror"
	"rekod.my/famvault/pkg/push"
	"rekod.my/famvault/pkg/storage"
)

type AdminService interface {
	ListUsers(ctx context.Context, pendingOnly bool) ([]userdto.UserResponse, error)
	// Approve marks the account usable. Approving twice is a no-op.
	Approve(ctx context.Context, admin *entity.User, userID uuid.UUID, ip string) (*userdto.UserResponse, error)
	// Reject deletes the account together with everything it owns,
	// including stored document files.
	Reject(ctx context.Context, admin *entity.User, userID uuid.UUID, ip string) error
	// SetAdmin grants or revokes the admin role. An admin cannot revoke
	// their own role.
	SetAdmin(ctx context.Context, admin *entity.User, userID uuid.UUID, isAdmin bool, ip string) (*userdto.UserResponse, error)
	// Broadcast stores a notification for every user and fans it out to
	// registered devices. Returns the recipient count.
	Broadcast(ctx context.Context, admin *entity.User, input dto.BroadcastInput, ip string) (int, error)
	Stats(ctx context.Context) (*dto.StatsResponse, error)
}

type adminService struct {
	users         userrepo.UserRepository
	people        personrepo.PersonRepository
	documents     documentrepo.DocumentRepository
	devices       devicerepo.DeviceRepository
	notifications notifsvc.NotificationService
	files         storage.DocumentStorage
	pusher        *push.Client
	activity      activitysvc.ActivityService
}

func NewAdminService(
	users userrepo.UserRepository,
	people personrepo.PersonRepository,
	documents documentrepo.DocumentRepository,
	devices devicerepo.DeviceRepository,
	notifications notifsvc.NotificationService,
	files storage.DocumentStorage,
	pusher *push.Client,
	activity activitysvc.ActivityService,
) AdminService {
	return &adminService{
		users:         users,
		people:        people,
		documents:     documents,
		devices:       devices,
		notifications: notifications,
		files:         files,
		pusher:        pusher,
		activity:      activity,
	}
}

func (s *adminService) ListUsers(ctx context.Context, pendingOnly bool) ([]userdto.UserResponse, error) {
	users, err := s.users.FindAll(ctx, pendingOnly)
	if err != nil {
		return nil, err
	}
	resp := make([]userdto.UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, userdto.NewUserResponse(u))
	}
	return resp, nil
}

func (s *adminService) Approve(ctx context.Context, admin *entity.User, userID uuid.UUID, ip string) (*userdto.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if user.ApprovedAt == nil {
		now := time.Now()
		user.ApprovedAt = &now
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}

		s.notify(ctx, user.ID, entity.NotificationTypeAdmin,
			"Account approved",
			"Your account has been approved. Welcome aboard.")

		s.activity.Record(ctx, activitysvc.Entry{
			ActorID:     &admin.ID,
			Action:      "user.approved",
			Description: "approved " + user.Email,
			SubjectType: "user",
			SubjectID:   user.ID.String(),
			IP:          ip,
		})
	}

	resp := userdto.NewUserResponse(user)
	return &resp, nil
}

func (s *adminService) Reject(ctx context.Context, admin *entity.User, userID uuid.UUID, ip string) error {
	user, err := s.users.FindByID(ctx, userID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	if user.IsAdmin {
		return apperror.New(http.StatusBadRequest, "cannot remove an administrator account", apperror.ErrBadRequest)
	}

	// Stored files first. A row cascade that leaves files behind is
	// recoverable; the reverse is not worth blocking the delete over.
	people, err := s.people.FindByUserID(ctx, user.ID)
	if err != nil {
		return err
	}
	for _, person := range people {
		for _, doc := range person.Documents {
			if err := s.files.Remove(doc.FilePath); err != nil {
				log.Printf("admin: failed to remove file %s: %v", doc.FilePath, err)
			}
		}
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}

	s.activity.Record(ctx, activitysvc.Entry{
		ActorID:     &admin.ID,
		Action:      "user.rejected",
		Description: "removed account " + user.Email,
		SubjectType: "user",
		SubjectID:   user.ID.String(),
		IP:          ip,
	})
	return nil
}

func (s *adminService) SetAdmin(ctx context.Context, admin *entity.User, userID uuid.UUID, isAdmin bool, ip string) (*userdto.UserResponse, error) {
	if admin.ID == userID && !isAdmin {
		return nil, apperror.New(http.StatusBadRequest, "you cannot revoke your own admin role", apperror.ErrBadRequest)
	}

	user, err := s.users.FindByID(ctx, userID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if user.IsAdmin != isAdmin {
		user.IsAdmin = isAdmin
		if isAdmin && user.ApprovedAt == nil {
			now := time.Now()
			user.ApprovedAt = &now
		}
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}

		action := "user.promoted"
		if !isAdmin {
			action = "user.demoted"
		}
		s.activity.Record(ctx, activitysvc.Entry{
			ActorID:     &admin.ID,
			Action:      action,
			SubjectType: "user",
			SubjectID:   user.ID.String(),
			IP:          ip,
		})
	}

	resp := userdto.NewUserResponse(user)
	return &resp, nil
}

func (s *adminService) Broadcast(ctx context.Context, admin *entity.User, input dto.BroadcastInput, ip string) (int, error) {
	ids, err := s.users.FindAllIDs(ctx)
	if err != nil {
		return 0, err
	}

	notifications := make([]*entity.Notification, 0, len(ids))
	for _, id := range ids {
		notifications = append(notifications, &entity.Notification{
			UserID:  id,
			Type:    entity.NotificationTypeAdmin,
			Title:   input.Title,
			Message: input.Message,
		})
	}

	if err := s.notifications.CreateBatch(ctx, notifications); err != nil {
		return 0, err
	}

	tokens, err := s.devices.AllTokens(ctx)
	if err != nil {
		log.Printf("admin: broadcast token lookup failed: %v", err)
		return len(ids), nil
	}
	s.sendPush(ctx, tokens, input.Title, input.Message)

	s.activity.Record(ctx, activitysvc.Entry{
		ActorID:     &admin.ID,
		Action:      "admin.broadcast",
		Description: input.Title,
		Properties:  entity.Properties{"recipients": len(ids)},
		IP:          ip,
	})
	return len(ids), nil
}

func (s *adminService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.users.CountPending(ctx)
	if err != nil {
		return nil, err
	}
	people, err := s.people.Count(ctx)
	if err != nil {
		return nil, err
	}
	documents, err := s.documents.Count(ctx)
	if err != nil {
		return nil, err
	}
	birthdays, err := s.people.UpcomingBirthdays(ctx, time.Now(), 7)
	if err != nil {
		return nil, err
	}

	return &dto.StatsResponse{
		Users:             users,
		PendingUsers:      pending,
		People:            people,
		Documents:         documents,
		UpcomingBirthdays: len(birthdays),
	}, nil
}

// notify stores a single notification and pushes it to the user's devices.
func (s *adminService) notify(ctx context.Context, userID uuid.UUID, kind, title, message string) {
	n := &entity.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		log.Printf("admin: failed to store notification for %s: %v", userID, err)
		return
	}
	tokens, err := s.devices.TokensForUser(ctx, userID)
	if err != nil {
		log.Printf("admin: token lookup for %s failed: %v", userID, err)
		return
	}
	s.sendPush(ctx, tokens, title, message)
}

// sendPush delivers to Expo, best effort.
func (s *adminService) sendPush(ctx context.Context, tokens []string, title, body string) {
	if s.pusher == nil || len(tokens) == 0 {
		return
	}
	messages := make([]push.Message, 0, len(tokens))
	for _, token := range tokens {
		messages = append(messages, push.Message{To: token, Title: title, Body: body})
	}
	if err := s.pusher.Send(ctx, messages); err != nil {
		log.Printf("admin: push delivery failed: %v", err)
	}
}
