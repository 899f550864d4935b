package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"adoteja/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Listing caching
	GetListing(ctx context.Context, listingID uuid.UUID) (*models.Listing, error)
	SetListing(ctx context.Context, listing *models.Listing, ttl time.Duration) error
	DeleteListing(ctx context.Context, listingID uuid.UUID) error

	// Location filter options
	GetLocationOptions(ctx context.Context) ([]models.LocationOption, error)
	SetLocationOptions(ctx context.Context, options []models.LocationOption, ttl time.Duration) error
	DeleteLocationOptions(ctx context.Context) error

	// Generic string operations for token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port and rediss://host:port forms too
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetListing(ctx context.Context, listingID uuid.UUID) (*models.Listing, error) {
	key := fmt.Sprintf("adoteja:listing:%s", listingID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var listing models.Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *redisCacheService) SetListing(ctx context.Context, listing *models.Listing, ttl time.Duration) error {
	key := fmt.Sprintf("adoteja:listing:%s", listing.ID.String())
	data, err := json.Marshal(listing)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteListing(ctx context.Context, listingID uuid.UUID) error {
	key := fmt.Sprintf("adoteja:listing:%s", listingID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetLocationOptions(ctx context.Context) ([]models.LocationOption, error) {
	data, err := r.client.Get(ctx, "adoteja:locations:active").Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var options []models.LocationOption
	if err := json.Unmarshal(data, &options); err != nil {
		return nil, err
	}
	return options, nil
}

func (r *redisCacheService) SetLocationOptions(ctx context.Context, options []models.LocationOption, ttl time.Duration) error {
	data, err := json.Marshal(options)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, "adoteja:locations:active", data, ttl).Err()
}

func (r *redisCacheService) DeleteLocationOptions(ctx context.Context) error {
	return r.client.Del(ctx, "adoteja:locations:active").Err()
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
