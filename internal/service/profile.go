package service

import (
	"github.com/tftboard/tftboard/internal/domain"
)

type ProfileService interface {
	Upsert(profile domain.Profile) error
	ById(id domain.UserId) (*domain.Profile, error)
	ByName(name string) (*domain.Profile, error)
}

type ProfileStorage interface {
	UpsertProfile(profile domain.Profile) error
	ProfileById(id domain.UserId) (*domain.Profile, error)
	ProfileByName(name string) (*domain.Profile, error)
}

type Profile struct {
	storage ProfileStorage
}

func NewProfile(storage ProfileStorage) *Profile {
	return &Profile{storage}
}

func (p *Profile) Upsert(profile domain.Profile) error {
	return p.storage.UpsertProfile(profile)
}

func (p *Profile) ById(id domain.UserId) (*domain.Profile, error) {
	return p.storage.ProfileById(id)
}

func (p *Profile) ByName(name string) (*domain.Profile, error) {
	return p.storage.ProfileByName(name)
}
