package service

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"rekod.my/famvault/internal/entity"
)

const peopleIndex = "people"

// SearchService keeps an optional Meilisearch index of person records for
// name search. All methods are safe no-ops when Meilisearch is not
// configured; callers fall back to database LIKE queries.
type SearchService interface {
	Enabled() bool
	IndexPerson(person *entity.Person)
	DeletePerson(id string)
	SearchPersonIDs(query string) []uuid.UUID
}

type meiliDoc struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Occupation string `json:"occupation,omitempty"`
	Address    string `json:"address,omitempty"`
}

type searchService struct {
	client meilisearch.ServiceManager
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{client: client}
	if client != nil {
		s.initIndex()
	}
	return s
}

func (s *searchService) initIndex() {
	sortable := []string{"name"}
	if _, err := s.client.Index(peopleIndex).UpdateSortableAttributes(&sortable); err != nil {
		log.Printf("failed to configure people index: %v", err)
	}
}

func (s *searchService) Enabled() bool {
	return s.client != nil
}

func (s *searchService) IndexPerson(person *entity.Person) {
	if s.client == nil {
		return
	}

	doc := meiliDoc{
		ID:   person.ID.String(),
		Name: person.Name,
	}
	if person.Occupation != nil {
		doc.Occupation = *person.Occupation
	}
	if person.Address != nil {
		doc.Address = *person.Address
	}

	if _, err := s.client.Index(peopleIndex).AddDocuments([]meiliDoc{doc}, nil); err != nil {
		log.Printf("failed to index person %s: %v", doc.ID, err)
	}
}

func (s *searchService) DeletePerson(id string) {
	if s.client == nil {
		return
	}
	if _, err := s.client.Index(peopleIndex).DeleteDocument(id); err != nil {
		log.Printf("failed to remove person %s from index: %v", id, err)
	}
}

func (s *searchService) SearchPersonIDs(query string) []uuid.UUID {
	if s.client == nil {
		return nil
	}

	res, err := s.client.Index(peopleIndex).Search(query, &meilisearch.SearchRequest{Limit: 100})
	if err != nil {
		log.Printf("people search failed: %v", err)
		return nil
	}

	ids := make([]uuid.UUID, 0, len(res.Hits))
	for _, hit := range res.Hits {
		raw, err := json.Marshal(hit)
		if err != nil {
			continue
		}
		var doc meiliDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		if id, err := uuid.Parse(doc.ID); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
