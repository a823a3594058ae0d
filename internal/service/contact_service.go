package service

import (
	"Mentora/internal/api/dto"
	"Mentora/internal/pkg/consts"
	"Mentora/internal/pkg/redis"
	"Mentora/internal/repository"
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/jinzhu/copier"
)

type ContactService interface {
	ListContacts(ctx context.Context) ([]*dto.ContactDTO, error)
	GetContactsByIds(ctx context.Context, ids []string) (map[string]*dto.ContactDTO, error)
}

type ContactServiceImpl struct {
	contactRepo repository.ContactRepo
}

func NewContactService(contactRepo repository.ContactRepo) ContactService {
	return &ContactServiceImpl{
		contactRepo: contactRepo,
	}
}

func (s *ContactServiceImpl) ListContacts(ctx context.Context) ([]*dto.ContactDTO, error) {
	contacts, err := s.contactRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	contactDTOList := make([]*dto.ContactDTO, 0, len(contacts))
	for _, contact := range contacts {
		contactDTO := &dto.ContactDTO{}
		if err := copier.Copy(contactDTO, contact); err != nil {
			return nil, err
		}
		contactDTO.ID = contact.ContactID
		contactDTOList = append(contactDTOList, contactDTO)
	}
	return contactDTOList, nil
}

// GetContactsByIds 批量取通讯录档案，redis 旁路缓存，未命中回源 MySQL
func (s *ContactServiceImpl) GetContactsByIds(ctx context.Context, ids []string) (map[string]*dto.ContactDTO, error) {
	newIds := make([]string, 0, len(ids))
	mp := make(map[string]*dto.ContactDTO)
	for _, id := range ids {
		value, err := redis.GetValue(ctx, consts.ContactInfoKey+id)
		if err != nil {
			return nil, err
		}
		if value != "" {
			var contactDTO *dto.ContactDTO
			err = json.Unmarshal([]byte(value), &contactDTO)
			if err != nil {
				newIds = append(newIds, id)
			} else {
				mp[id] = contactDTO
			}
		} else {
			newIds = append(newIds, id)
		}
	}
	if len(newIds) > 0 {
		contacts, err := s.contactRepo.GetByContactIds(ctx, newIds)
		if err != nil {
			return nil, err
		}
		for _, contact := range contacts {
			contactDTO := &dto.ContactDTO{}
			if err := copier.Copy(contactDTO, contact); err != nil {
				return nil, err
			}
			contactDTO.ID = contact.ContactID
			mp[contact.ContactID] = contactDTO
			jsonStr, err := json.Marshal(contactDTO)
			if err != nil {
				return nil, err
			}
			err = redis.SetWithExpiration(ctx, consts.ContactInfoKey+contact.ContactID, string(jsonStr), time.Hour*1)
			if err != nil {
				return nil, err
			}
		}
	}
	return mp, nil
}
