package store

import (
	"fmt"
	"log/slog"

	"github.com/pavelanni/examprep/internal/model"
)

// LoadEducationalMaterial finds the material whose topic field equals topic.
// Keys are not assumed to match the topic, so the lookup scans values.
func (s *Store) LoadEducationalMaterial(topic string) (*model.EducationalMaterial, error) {
	docs, err := s.materials.readAll()
	if err != nil {
		return nil, err
	}
	key, ok := findMaterialKey(docs, topic)
	if !ok {
		return nil, fmt.Errorf("educational material %q: %w", topic, ErrNotFound)
	}
	m := docs[key]
	return &m, nil
}

func findMaterialKey(docs map[string]model.EducationalMaterial, topic string) (string, bool) {
	for _, k := range sortedKeys(docs) {
		if docs[k].Topic == topic {
			return k, true
		}
	}
	return "", false
}

// LoadSimpleTopic returns the topic stored under name.
// A record whose name field differs from its key is treated as missing.
func (s *Store) LoadSimpleTopic(name string) (*model.Topic, error) {
	docs, err := s.topics.readAll()
	if err != nil {
		return nil, err
	}
	t, ok := docs[name]
	if !ok || t.Name != name {
		return nil, fmt.Errorf("topic %q: %w", name, ErrNotFound)
	}
	return &t, nil
}

// LoadAllEducationalMaterials returns the educational collection as stored.
func (s *Store) LoadAllEducationalMaterials() (map[string]model.EducationalMaterial, error) {
	return s.materials.readAll()
}

// LoadAllSimpleTopics returns the topic collection as stored.
func (s *Store) LoadAllSimpleTopics() (map[string]model.Topic, error) {
	return s.topics.readAll()
}

// SaveEducationalMaterial inserts or replaces the material keyed by its topic.
func (s *Store) SaveEducationalMaterial(m model.EducationalMaterial) error {
	if err := s.materials.upsert(m.Topic, m); err != nil {
		return err
	}
	slog.Debug("saved educational material", "topic", m.Topic)
	return nil
}

// SaveSimpleTopic inserts or replaces the topic keyed by its name.
func (s *Store) SaveSimpleTopic(t model.Topic) error {
	if err := s.topics.upsert(t.Name, t); err != nil {
		return err
	}
	slog.Debug("saved topic", "name", t.Name)
	return nil
}

// DeleteEducationalMaterial removes the material whose topic field equals topic.
func (s *Store) DeleteEducationalMaterial(topic string) (bool, error) {
	docs, err := s.materials.readAll()
	if err != nil {
		return false, err
	}
	key, found := findMaterialKey(docs, topic)
	if !found {
		return false, nil
	}
	ok, err := s.materials.remove(key)
	if ok {
		slog.Info("deleted educational material", "topic", topic, "key", key)
	}
	return ok, err
}

// DeleteSimpleTopic removes the topic stored under name.
func (s *Store) DeleteSimpleTopic(name string) (bool, error) {
	ok, err := s.topics.remove(name)
	if ok {
		slog.Info("deleted topic", "name", name)
	}
	return ok, err
}
