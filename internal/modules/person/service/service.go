package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"rekod.my/famvault/internal/entity"
	activity "rekod.my/famvault/internal/modules/activity/service"
	"rekod.my/famvault/internal/modules/person/dto"
	"rekod.my/famvault/internal/modules/person/repository"
	search "rekod.my/famvault/internal/modules/search/service"
	"rekod.my/famvault/pkg/apperror"
)

type Service interface {
	Create(ctx context.Context, user *entity.User, req dto.CreatePersonRequest, ip string) (*dto.PersonResponse, error)
	Get(ctx context.Context, user *entity.User, id uuid.UUID) (*dto.PersonResponse, error)
	List(ctx context.Context, user *entity.User, filter dto.PersonFilter) (*dto.PaginatedPersonResponse, error)
	Update(ctx context.Context, user *entity.User, id uuid.UUID, req dto.UpdatePersonRequest, ip string) (*dto.PersonResponse, error)
	Delete(ctx context.Context, user *entity.User, id uuid.UUID, ip string) error

	// CanAccess loads the person and verifies the user may read it:
	// admin, owner, or holder of a share grant. Other modules lean on this
	// for documents and favorites.
	CanAccess(ctx context.Context, user *entity.User, personID uuid.UUID) (*entity.Person, error)
	// CanEdit is CanAccess minus the share grant: only owner or admin.
	CanEdit(ctx context.Context, user *entity.User, personID uuid.UUID) (*entity.Person, error)
}

// FileRemover is the slice of document storage the person service needs
// when a delete cascades stored files.
type FileRemover interface {
	Remove(path string) error
}

type personService struct {
	repo     repository.PersonRepository
	files    FileRemover
	search   search.SearchService
	activity activity.ActivityService
	favRepo  FavoriteChecker
}

// FavoriteChecker reports whether a user flagged a person as favorite.
type FavoriteChecker interface {
	IsFavorite(ctx context.Context, userID, personID uuid.UUID) (bool, error)
}

func NewService(repo repository.PersonRepository, files FileRemover, searchSvc search.SearchService, activitySvc activity.ActivityService, favRepo FavoriteChecker) Service {
	return &personService{
		repo:     repo,
		files:    files,
		search:   searchSvc,
		activity: activitySvc,
		favRepo:  favRepo,
	}
}

func (s *personService) Create(ctx context.Context, user *entity.User, req dto.CreatePersonRequest, ip string) (*dto.PersonResponse, error) {
	if _, err := s.repo.FindByNRIC(ctx, req.NRIC); err == nil {
		return nil, apperror.New(409, "a person with this NRIC already exists", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	person := &entity.Person{
		UserID:     user.ID,
		Name:       req.Name,
		NRIC:       req.NRIC,
		Gender:     req.Gender,
		BloodType:  req.BloodType,
		Occupation: req.Occupation,
		Address:    req.Address,
		Phones:     req.Phones,
		Email:      req.Email,
	}

	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return nil, apperror.New(400, "date_of_birth must match format 2006-01-02", apperror.ErrBadRequest)
		}
		person.DateOfBirth = dob
	}

	// NRIC assist fills whatever the caller left blank. Malformed NRICs
	// are let through untouched.
	if info := ParseNRIC(req.NRIC); info != nil {
		if person.DateOfBirth.IsZero() {
			person.DateOfBirth = info.DateOfBirth
		}
		if person.Gender == "" {
			person.Gender = info.Gender
		}
	}

	if person.DateOfBirth.IsZero() {
		return nil, apperror.New(400, "date_of_birth is required", apperror.ErrBadRequest)
	}
	if person.Gender == "" {
		return nil, apperror.New(400, "gender is required", apperror.ErrBadRequest)
	}

	if err := s.repo.Create(ctx, person); err != nil {
		// Unique NRIC index catches inserts that raced past the pre-check.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(409, "a person with this NRIC already exists", apperror.ErrConflict)
		}
		return nil, err
	}

	s.search.IndexPerson(person)

	s.activity.Record(ctx, activity.Entry{
		ActorID:     &user.ID,
		Action:      "person.created",
		Description: "created person " + person.Name,
		SubjectType: "person",
		SubjectID:   person.ID.String(),
		IP:          ip,
	})

	resp := s.toResponse(ctx, user, person)
	return &resp, nil
}

func (s *personService) Get(ctx context.Context, user *entity.User, id uuid.UUID) (*dto.PersonResponse, error) {
	person, err := s.CanAccess(ctx, user, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(ctx, user, person)
	return &resp, nil
}

func (s *personService) List(ctx context.Context, user *entity.User, filter dto.PersonFilter) (*dto.PaginatedPersonResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	var (
		people []*entity.Person
		total  int64
		err    error
	)

	if filter.Search != "" && s.search.Enabled() {
		ids := s.search.SearchPersonIDs(filter.Search)
		matched, ferr := s.repo.FindByIDs(ctx, ids)
		if ferr != nil {
			return nil, ferr
		}
		people = filterAccessible(ctx, s.repo, user, matched)
		total = int64(len(people))
		people = paginate(people, offset, filter.Limit)
	} else {
		people, total, err = s.repo.FindAccessible(ctx, user.ID, user.IsAdmin, filter.Search, offset, filter.Limit)
		if err != nil {
			return nil, err
		}
	}

	resp := &dto.PaginatedPersonResponse{
		Data: make([]dto.PersonResponse, 0, len(people)),
		Meta: dto.PaginationMeta{
			CurrentPage: filter.Page,
			TotalItems:  total,
			Limit:       filter.Limit,
			TotalPages:  int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
		},
	}
	for _, p := range people {
		resp.Data = append(resp.Data, s.toResponse(ctx, user, p))
	}
	return resp, nil
}

func (s *personService) Update(ctx context.Context, user *entity.User, id uuid.UUID, req dto.UpdatePersonRequest, ip string) (*dto.PersonResponse, error) {
	person, err := s.CanEdit(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if req.NRIC != person.NRIC {
		if _, err := s.repo.FindByNRIC(ctx, req.NRIC); err == nil {
			return nil, apperror.New(409, "a person with this NRIC already exists", apperror.ErrConflict)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, apperror.New(400, "date_of_birth must match format 2006-01-02", apperror.ErrBadRequest)
	}

	person.Name = req.Name
	person.NRIC = req.NRIC
	person.DateOfBirth = dob
	person.Gender = req.Gender
	person.BloodType = req.BloodType
	person.Occupation = req.Occupation
	person.Address = req.Address
	person.Phones = req.Phones
	person.Email = req.Email

	if err := s.repo.Update(ctx, person); err != nil {
		return nil, err
	}

	s.search.IndexPerson(person)

	s.activity.Record(ctx, activity.Entry{
		ActorID:     &user.ID,
		Action:      "person.updated",
		Description: "updated person " + person.Name,
		SubjectType: "person",
		SubjectID:   person.ID.String(),
		IP:          ip,
	})

	resp := s.toResponse(ctx, user, person)
	return &resp, nil
}

func (s *personService) Delete(ctx context.Context, user *entity.User, id uuid.UUID, ip string) error {
	person, err := s.CanEdit(ctx, user, id)
	if err != nil {
		return err
	}

	// Stored files first, then rows. The rows go regardless so the record
	// does not resurrect a half-deleted person.
	for _, doc := range person.Documents {
		if s.files != nil {
			if err := s.files.Remove(doc.FilePath); err != nil {
				log.Printf("person delete: failed to remove document file %s: %v", doc.FilePath, err)
			}
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.search.DeletePerson(id.String())

	s.activity.Record(ctx, activity.Entry{
		ActorID:     &user.ID,
		Action:      "person.deleted",
		Description: "deleted person " + person.Name,
		SubjectType: "person",
		SubjectID:   person.ID.String(),
		IP:          ip,
	})

	return nil
}

func (s *personService) CanAccess(ctx context.Context, user *entity.User, personID uuid.UUID) (*entity.Person, error) {
	person, err := s.repo.FindByID(ctx, personID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if user.IsAdmin || person.UserID == user.ID {
		return person, nil
	}

	shared, err := s.repo.HasShare(ctx, personID, user.ID)
	if err != nil {
		return nil, err
	}
	if !shared {
		return nil, apperror.ErrForbidden
	}
	return person, nil
}

func (s *personService) CanEdit(ctx context.Context, user *entity.User, personID uuid.UUID) (*entity.Person, error) {
	person, err := s.repo.FindByID(ctx, personID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if !user.IsAdmin && person.UserID != user.ID {
		return nil, apperror.ErrForbidden
	}
	return person, nil
}

func (s *personService) toResponse(ctx context.Context, user *entity.User, person *entity.Person) dto.PersonResponse {
	isFav := false
	if s.favRepo != nil {
		isFav, _ = s.favRepo.IsFavorite(ctx, user.ID, person.ID)
	}

	phones := []string(person.Phones)
	if phones == nil {
		phones = []string{}
	}

	return dto.PersonResponse{
		ID:          person.ID,
		UserID:      person.UserID,
		Name:        person.Name,
		NRIC:        person.NRIC,
		DateOfBirth: person.DateOfBirth.Format("2006-01-02"),
		Gender:      person.Gender,
		BloodType:   person.BloodType,
		Occupation:  person.Occupation,
		Address:     person.Address,
		Phones:      phones,
		Email:       person.Email,
		IsFavorite:  isFav,
		CreatedAt:   person.CreatedAt,
	}
}

func filterAccessible(ctx context.Context, repo repository.PersonRepository, user *entity.User, people []*entity.Person) []*entity.Person {
	if user.IsAdmin {
		return people
	}
	out := make([]*entity.Person, 0, len(people))
	for _, p := range people {
		if p.UserID == user.ID {
			out = append(out, p)
			continue
		}
		if shared, err := repo.HasShare(ctx, p.ID, user.ID); err == nil && shared {
			out = append(out, p)
		}
	}
	return out
}

func paginate(people []*entity.Person, offset, limit int) []*entity.Person {
	if offset >= len(people) {
		return nil
	}
	end := offset + limit
	if end > len(people) {
		end = len(people)
	}
	return people[offset:end]
}
