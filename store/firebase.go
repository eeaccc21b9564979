package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"
)

// FirebaseConfig is the settings needed to reach a realtime database.
type FirebaseConfig struct {
	DatabaseURL     string        `yaml:"database_url"`
	CredentialsFile string        `yaml:"credentials_file"` // empty uses application default credentials
	Timeout         time.Duration `yaml:"timeout"`
}

// Firebase is a Client backed by a Firebase Realtime Database.
type Firebase struct {
	db      *db.Client
	timeout time.Duration
}

func NewFirebase(ctx context.Context, cfg FirebaseConfig) (*Firebase, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{DatabaseURL: cfg.DatabaseURL}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase database: %w", err)
	}
	return &Firebase{db: client, timeout: cfg.Timeout}, nil
}

func (f *Firebase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.timeout)
}

func (f *Firebase) get(ctx context.Context, path string) (any, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	var raw json.RawMessage
	if err := f.db.NewRef(path).Get(ctx, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ErrNotFound
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrType, err)
	}
	return v, nil
}

func (f *Firebase) set(ctx context.Context, path string, v any) error {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()
	return f.db.NewRef(path).Set(ctx, v)
}

func (f *Firebase) GetBool(ctx context.Context, path string) (bool, error) {
	v, err := f.get(ctx, path)
	if err != nil {
		return false, err
	}
	return asBool(v)
}

func (f *Firebase) GetInt(ctx context.Context, path string) (int, error) {
	v, err := f.get(ctx, path)
	if err != nil {
		return 0, err
	}
	return asInt(v)
}

func (f *Firebase) SetString(ctx context.Context, path, v string) error {
	return f.set(ctx, path, v)
}

func (f *Firebase) SetFloat(ctx context.Context, path string, v float64) error {
	if err := checkFloat(v); err != nil {
		return err
	}
	return f.set(ctx, path, v)
}
