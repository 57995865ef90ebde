package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayudapp/ayudapp-api/internal/models"
	appErrors "github.com/ayudapp/ayudapp-api/pkg/errors"
)

type catalogRepoStub struct {
	prefixes    []models.CoursePrefix
	taTypes     []models.TaType
	prefixCalls int
	taTypeCalls int
}

func (s *catalogRepoStub) ListPrefixes(ctx context.Context) ([]models.CoursePrefix, error) {
	s.prefixCalls++
	return s.prefixes, nil
}

func (s *catalogRepoStub) ListTaTypes(ctx context.Context) ([]models.TaType, error) {
	s.taTypeCalls++
	return s.taTypes, nil
}

type kvCacheStub struct {
	store map[string][]byte
}

func newKvCacheStub() *kvCacheStub {
	return &kvCacheStub{store: make(map[string][]byte)}
}

func (s *kvCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *kvCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = raw
	return nil
}

func TestCatalogSemestersDescending(t *testing.T) {
	svc := NewCatalogService(&catalogRepoStub{}, nil, mustSemesters(), 0, nil)

	labels := svc.Semesters()
	require.Len(t, labels, 16)
	assert.Equal(t, "2025-2", labels[0])
	assert.Equal(t, "2018-1", labels[len(labels)-1])
}

func TestCatalogSalaryOptionsCount(t *testing.T) {
	svc := NewCatalogService(&catalogRepoStub{}, nil, mustSemesters(), 0, nil)

	options := svc.SalaryOptions()
	require.Len(t, options, 31)
	assert.Equal(t, "0-10000", options[0].Value)
	assert.Equal(t, "300000-plus", options[len(options)-1].Value)
}

func TestCatalogPrefixesCachedAfterFirstRead(t *testing.T) {
	repo := &catalogRepoStub{prefixes: []models.CoursePrefix{{ID: "p1", Prefix: "IIC"}}}
	cache := newKvCacheStub()
	svc := NewCatalogService(repo, cache, mustSemesters(), time.Minute, nil)

	first, err := svc.Prefixes(context.Background())
	require.NoError(t, err)
	second, err := svc.Prefixes(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.prefixCalls, "second read served from cache")
}

func TestCatalogTaTypesCacheAside(t *testing.T) {
	repo := &catalogRepoStub{taTypes: []models.TaType{{ID: "tt1", Name: "Corrector"}}}
	cache := newKvCacheStub()
	svc := NewCatalogService(repo, cache, mustSemesters(), time.Minute, nil)

	types, err := svc.TaTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 1)

	_, err = svc.TaTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.taTypeCalls)
}
