package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultRateLimit = 10000

// KeyPreview masks all but the edges of a key for listings
func KeyPreview(key string) string {
	if len(key) > 8 {
		return key[:3] + "..." + key[len(key)-4:]
	}
	return "****"
}

// CreateKey stores a freshly minted key
func (s *Store) CreateKey(ctx context.Context, key, name, restaurant string, rateLimit int) (*APIKey, error) {
	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}
	apiKey := APIKey{
		Key:          key,
		KeyPreview:   KeyPreview(key),
		Name:         name,
		RestaurantID: restaurant,
		RateLimit:    rateLimit,
	}
	if err := s.db.WithContext(ctx).Create(&apiKey).Error; err != nil {
		return nil, err
	}
	return &apiKey, nil
}

// TouchKey fetches or creates the usage record for a verified key and
// stamps LastUsed. Keys are stateless HMAC tokens, so a valid key that was
// never stored still gets a row.
func (s *Store) TouchKey(ctx context.Context, key, name, restaurant string) (*APIKey, error) {
	var apiKey APIKey
	// match on the key alone; Attrs only fill a row that has to be created
	err := s.db.WithContext(ctx).Where(APIKey{Key: key}).Attrs(APIKey{
		KeyPreview:   KeyPreview(key),
		Name:         name,
		RestaurantID: restaurant,
		RateLimit:    defaultRateLimit,
	}).FirstOrCreate(&apiKey).Error
	if err != nil {
		return nil, err
	}
	now := time.Now()
	apiKey.LastUsed = &now
	if err := s.db.WithContext(ctx).Model(&apiKey).Update("last_used", now).Error; err != nil {
		s.lg.Printf("failed to stamp key %d: %v", apiKey.ID, err)
	}
	return &apiKey, nil
}

// ListKeys returns every stored key
func (s *Store) ListKeys(ctx context.Context) ([]APIKey, error) {
	var keys []APIKey
	err := s.db.WithContext(ctx).Order("id").Find(&keys).Error
	return keys, err
}

// RevokeKey deletes a key by id
func (s *Store) RevokeKey(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&APIKey{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateKeyLimit changes the daily request limit of a key
func (s *Store) UpdateKeyLimit(ctx context.Context, id uint, rateLimit int) error {
	res := s.db.WithContext(ctx).Model(&APIKey{}).Where("id = ?", id).Update("rate_limit", rateLimit)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RecordUsage bumps today's counters for keyID with a single upsert
func (s *Store) RecordUsage(ctx context.Context, keyID uint, shiftCount, staffCount int) error {
	today := time.Now().Format("2006-01-02")

	// OnConflict works on postgres, mysql and sqlite alike
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count": gorm.Expr("request_count + ?", 1),
			"total_shifts":  gorm.Expr("total_shifts + ?", shiftCount),
			"total_staff":   gorm.Expr("total_staff + ?", staffCount),
		}),
	}).Create(&APIUsage{
		KeyID:        keyID,
		Date:         today,
		RequestCount: 1,
		TotalShifts:  shiftCount,
		TotalStaff:   staffCount,
	}).Error
}

// UsageToday returns the request count recorded for keyID today
func (s *Store) UsageToday(ctx context.Context, keyID uint) (int, error) {
	var usage APIUsage
	err := s.db.WithContext(ctx).Where("key_id = ? AND date = ?", keyID, time.Now().Format("2006-01-02")).First(&usage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return usage.RequestCount, err
}

// Usage returns up to the last 30 days of usage for keyID
func (s *Store) Usage(ctx context.Context, keyID uint) ([]APIUsage, error) {
	var usage []APIUsage
	err := s.db.WithContext(ctx).Where("key_id = ?", keyID).Order("date desc").Limit(30).Find(&usage).Error
	return usage, err
}

// FindUser looks up an admin by username
func (s *Store) FindUser(ctx context.Context, username string) (*MasterUser, error) {
	var user MasterUser
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CountUsers returns the number of admin accounts
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&MasterUser{}).Count(&count).Error
	return count, err
}

// CreateUser stores an admin account with an already hashed password
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) error {
	return s.db.WithContext(ctx).Create(&MasterUser{Username: username, PasswordHash: passwordHash}).Error
}
