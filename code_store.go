package goMFA

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const mfaCodeRecordVersion1 = 1

var (
	errMFACodeNotFound = errors.New("mfa code not found")
	errMFACodeExpired  = errors.New("mfa code expired")
	errMFACodeBackend  = errors.New("mfa code backend unavailable")
)

type mfaCodeRecord struct {
	Principal       string
	Email           string
	Code            string
	ProviderSession string
	CreatedAt       int64
	ExpiresAt       int64
	Attempts        uint16
}

type mfaCodeStore struct {
	redis  *redis.Client
	prefix string
}

func newMFACodeStore(redisClient *redis.Client, prefix string) *mfaCodeStore {
	return &mfaCodeStore{redis: redisClient, prefix: prefix}
}

func (s *mfaCodeStore) key(sessionToken string) string {
	return s.prefix + ":" + sessionToken
}

func (s *mfaCodeStore) Save(
	ctx context.Context,
	sessionToken string,
	record *mfaCodeRecord,
	ttl time.Duration,
) error {
	encoded, err := encodeMFACodeRecord(record)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(sessionToken), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errMFACodeBackend, err)
	}
	return nil
}

func (s *mfaCodeStore) Get(ctx context.Context, sessionToken string) (*mfaCodeRecord, error) {
	data, err := s.redis.Get(ctx, s.key(sessionToken)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errMFACodeNotFound
		}
		return nil, fmt.Errorf("%w: %v", errMFACodeBackend, err)
	}

	record, err := decodeMFACodeRecord(data)
	if err != nil {
		return nil, err
	}
	if time.Now().Unix() > record.ExpiresAt {
		_, _ = s.redis.Del(ctx, s.key(sessionToken)).Result()
		return nil, errMFACodeExpired
	}
	return record, nil
}

func (s *mfaCodeStore) Delete(ctx context.Context, sessionToken string) (bool, error) {
	n, err := s.redis.Del(ctx, s.key(sessionToken)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", errMFACodeBackend, err)
	}
	return n > 0, nil
}

// RecordFailure bumps the attempt counter under WATCH so concurrent failed
// verifications never lose an increment. Returns true when the record was
// deleted because the limit was reached.
func (s *mfaCodeStore) RecordFailure(
	ctx context.Context,
	sessionToken string,
	maxAttempts int,
) (bool, error) {
	const maxRetries = 4
	key := s.key(sessionToken)

	for i := 0; i < maxRetries; i++ {
		var exceeded bool
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeMFACodeRecord(data)
			if err != nil {
				return err
			}
			if time.Now().Unix() > record.ExpiresAt {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return errMFACodeExpired
			}

			record.Attempts++
			if int(record.Attempts) >= maxAttempts {
				exceeded = true
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return nil
			}

			ttl := time.Until(time.Unix(record.ExpiresAt, 0))
			if ttl <= 0 {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return errMFACodeExpired
			}

			updated, err := encodeMFACodeRecord(record)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, ttl)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return false, errMFACodeNotFound
			}
			if errors.Is(err, errMFACodeExpired) {
				return false, err
			}
			return false, fmt.Errorf("%w: %v", errMFACodeBackend, err)
		}
		return exceeded, nil
	}

	return false, errMFACodeNotFound
}

func (s *mfaCodeStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", errMFACodeBackend, err)
	}
	return time.Since(start), nil
}

func encodeMFACodeRecord(record *mfaCodeRecord) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(mfaCodeRecordVersion1)

	if err := binary.Write(&buf, binary.BigEndian, record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}

	for _, field := range []string{record.Principal, record.Email, record.Code, record.ProviderSession} {
		if len(field) > 65535 {
			return nil, errors.New("mfa code field length exceeded")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}

	return buf.Bytes(), nil
}

func decodeMFACodeRecord(data []byte) (*mfaCodeRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != mfaCodeRecordVersion1 {
		return nil, errors.New("invalid mfa code record version")
	}

	record := &mfaCodeRecord{}
	if err := binary.Read(reader, binary.BigEndian, &record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}

	for _, field := range []*string{&record.Principal, &record.Email, &record.Code, &record.ProviderSession} {
		var length uint16
		if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
			return nil, err
		}
		raw := make([]byte, length)
		if _, err := io.ReadFull(reader, raw); err != nil {
			return nil, err
		}
		*field = string(raw)
	}

	return record, nil
}
