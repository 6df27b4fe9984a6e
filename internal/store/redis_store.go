package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements Client over Redis: one JSON value per document key,
// collection reads by prefix scan, and change fan-out over one pub/sub
// channel per collection.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

func NewRedisStore(client *redis.Client, logger *slog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "campus-safety",
		logger: logger,
	}
}

func (s *RedisStore) docKey(collection, id string) string {
	return s.prefix + ":doc:" + collection + "/" + id
}

func (s *RedisStore) channel(collection string) string {
	return s.prefix + ":changes:" + collection
}

func (s *RedisStore) Get(ctx context.Context, path string) (json.RawMessage, error) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, err
	}

	if len(segs) == 1 {
		return s.getCollection(ctx, segs[0])
	}

	raw, err := s.client.Get(ctx, s.docKey(segs[0], segs[1])).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store get %s: %w", path, err)
	}
	if len(segs) == 2 {
		return json.RawMessage(raw), nil
	}
	return subtree(raw, segs[2:])
}

// getCollection assembles the collection object, keyed by document id.
// Returns (nil, nil) when the collection has no children.
func (s *RedisStore) getCollection(ctx context.Context, collection string) (json.RawMessage, error) {
	base := s.docKey(collection, "")
	children := make(map[string]json.RawMessage)

	iter := s.client.Scan(ctx, 0, base+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := s.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue // deleted between scan and read
		}
		if err != nil {
			return nil, fmt.Errorf("store get %s: %w", collection, err)
		}
		children[strings.TrimPrefix(key, base)] = json.RawMessage(raw)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("store scan %s: %w", collection, err)
	}
	if len(children) == 0 {
		return nil, nil
	}
	return json.Marshal(children)
}

func (s *RedisStore) Set(ctx context.Context, path string, value any) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(segs) < 2 {
		return fmt.Errorf("%w: cannot set a whole collection (%q)", ErrInvalidPath, path)
	}

	var payload []byte
	if len(segs) == 2 {
		payload, err = json.Marshal(value)
		if err != nil {
			return fmt.Errorf("store set %s: %w", path, err)
		}
	} else {
		payload, err = s.rewriteSubtree(ctx, segs, func(parent map[string]any, field string) error {
			decoded, err := reencode(value)
			if err != nil {
				return err
			}
			parent[field] = decoded
			return nil
		})
		if err != nil {
			return err
		}
	}

	if err := s.client.Set(ctx, s.docKey(segs[0], segs[1]), payload, 0).Err(); err != nil {
		return fmt.Errorf("store set %s: %w", path, err)
	}
	return s.notify(ctx, segs[0], path)
}

func (s *RedisStore) Update(ctx context.Context, path string, fields map[string]any) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(segs) < 2 {
		return fmt.Errorf("%w: cannot update a whole collection (%q)", ErrInvalidPath, path)
	}

	payload, err := s.rewriteSubtree(ctx, append(segs, ""), func(parent map[string]any, _ string) error {
		for k, v := range fields {
			decoded, err := reencode(v)
			if err != nil {
				return err
			}
			parent[k] = decoded
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.docKey(segs[0], segs[1]), payload, 0).Err(); err != nil {
		return fmt.Errorf("store update %s: %w", path, err)
	}
	return s.notify(ctx, segs[0], path)
}

func (s *RedisStore) Delete(ctx context.Context, path string) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(segs) < 2 {
		return fmt.Errorf("%w: cannot delete a whole collection (%q)", ErrInvalidPath, path)
	}

	if len(segs) == 2 {
		if err := s.client.Del(ctx, s.docKey(segs[0], segs[1])).Err(); err != nil {
			return fmt.Errorf("store delete %s: %w", path, err)
		}
		return s.notify(ctx, segs[0], path)
	}

	payload, err := s.rewriteSubtree(ctx, segs, func(parent map[string]any, field string) error {
		delete(parent, field)
		return nil
	})
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.docKey(segs[0], segs[1]), payload, 0).Err(); err != nil {
		return fmt.Errorf("store delete %s: %w", path, err)
	}
	return s.notify(ctx, segs[0], path)
}

func (s *RedisStore) Push(ctx context.Context, collection string, value any) (string, error) {
	segs, err := splitPath(collection)
	if err != nil {
		return "", err
	}
	if len(segs) != 1 {
		return "", fmt.Errorf("%w: push target must be a collection (%q)", ErrInvalidPath, collection)
	}

	id := uuid.NewString()
	if err := s.Set(ctx, segs[0]+"/"+id, value); err != nil {
		return "", err
	}
	return id, nil
}

func (s *RedisStore) Subscribe(path string, fn func(snapshot json.RawMessage)) (func(), error) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	if len(segs) != 1 {
		return nil, fmt.Errorf("%w: only collections support subscriptions (%q)", ErrInvalidPath, path)
	}
	collection := segs[0]

	ctx := context.Background()
	pubsub := s.client.Subscribe(ctx, s.channel(collection))

	// Deliver the current value before any change notifications.
	snap, err := s.getCollection(ctx, collection)
	if err != nil {
		pubsub.Close()
		return nil, err
	}
	fn(snap)

	go func() {
		for range pubsub.Channel() {
			snap, err := s.getCollection(ctx, collection)
			if err != nil {
				s.logger.Error("failed to reload collection after change",
					"collection", collection, "error", err)
				continue
			}
			fn(snap)
		}
	}()

	return func() { pubsub.Close() }, nil
}

// notify announces a change under collection. The write has already landed,
// so a failed publish leaves subscribers stale; surface it for retry.
func (s *RedisStore) notify(ctx context.Context, collection, path string) error {
	if err := s.client.Publish(ctx, s.channel(collection), path).Err(); err != nil {
		return fmt.Errorf("store notify %s: %w", path, err)
	}
	return nil
}

// subtree walks raw down the given segments and returns the value found
// there. Absent segments, and segments addressing into a non-object value,
// read as (nil, nil) like any other missing path.
func subtree(raw json.RawMessage, segs []string) (json.RawMessage, error) {
	current := raw
	for _, seg := range segs {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(current, &obj); err != nil {
			return nil, nil
		}
		child, ok := obj[seg]
		if !ok {
			return nil, nil
		}
		current = child
	}
	return current, nil
}

// rewriteSubtree loads the document named by segs[0]/segs[1], applies mutate
// to the parent map of the subtree addressed by the remaining segments
// (creating intermediate objects as needed), and returns the re-marshaled
// document. The final segment is passed to mutate as the field name; an
// empty final segment addresses the parent itself.
func (s *RedisStore) rewriteSubtree(ctx context.Context, segs []string, mutate func(parent map[string]any, field string) error) ([]byte, error) {
	doc := make(map[string]any)
	raw, err := s.client.Get(ctx, s.docKey(segs[0], segs[1])).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("store read %s/%s: %w", segs[0], segs[1], err)
	}
	if err == nil {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("store decode %s/%s: %w", segs[0], segs[1], err)
		}
	}

	parent := doc
	inner := segs[2:]
	for _, seg := range inner[:len(inner)-1] {
		child, ok := parent[seg].(map[string]any)
		if !ok {
			child = make(map[string]any)
			parent[seg] = child
		}
		parent = child
	}
	// Update appends an empty segment so mutate receives the subtree map
	// itself; Set and Delete receive its parent plus the field name.
	field := inner[len(inner)-1]
	if err := mutate(parent, field); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// reencode round-trips a value through JSON so typed structs and raw
// messages land in the document as plain objects.
func reencode(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}
