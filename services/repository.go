package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sarveshwaran777333/Water-buddy/models"
	"github.com/sarveshwaran777333/Water-buddy/store"
	"github.com/sarveshwaran777333/Water-buddy/utils"
)

const usersNode = "users"

var validate = validator.New()

// Repository maps the typed records onto store paths. It is the sole writer
// of durable state; services mutate in-memory copies and write back through
// it.
type Repository struct {
	store  store.Adapter
	logger *zap.Logger
}

func NewRepository(adapter store.Adapter, logger *zap.Logger) *Repository {
	return &Repository{store: adapter, logger: logger}
}

func (r *Repository) userPath(uid string) string {
	return usersNode + "/" + uid
}

func (r *Repository) dayPath(uid, date string) string {
	return r.userPath(uid) + "/days/" + date
}

func (r *Repository) storageError(op string, err error) error {
	utils.StorageErrors.WithLabelValues(r.store.Backend(), op).Inc()
	r.logger.Warn("storage_error",
		zap.String("backend", r.store.Backend()),
		zap.String("op", op),
		zap.Error(err),
	)
	return err
}

// FindUserByUsername scans all users for an exact, case-sensitive match.
// Linear scan is fine at the expected account counts.
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (string, *models.User, error) {
	raw, err := r.store.Read(ctx, usersNode)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil, ErrUserNotFound
	}
	if err != nil {
		return "", nil, r.storageError("read", err)
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(raw, &all); err != nil {
		return "", nil, fmt.Errorf("%w: users node is not an object: %v", store.ErrUnavailable, err)
	}

	for uid, rec := range all {
		var u models.User
		if err := json.Unmarshal(rec, &u); err != nil {
			r.logger.Warn("skipping_malformed_user_record", zap.String("uid", uid), zap.Error(err))
			continue
		}
		if u.Username == username {
			u.UID = uid
			r.normalize(&u)
			return uid, &u, nil
		}
	}
	return "", nil, ErrUserNotFound
}

func (r *Repository) GetUser(ctx context.Context, uid string) (*models.User, error) {
	raw, err := r.store.Read(ctx, r.userPath(uid))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, r.storageError("read", err)
	}

	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("%w: corrupt user record %s: %v", store.ErrUnavailable, uid, err)
	}
	u.UID = uid
	r.normalize(&u)
	return &u, nil
}

func (r *Repository) CreateUser(ctx context.Context, u *models.User) (string, error) {
	uid := uuid.NewString()
	u.UID = ""
	u.CreatedAt = time.Now().UTC()
	if err := validate.Struct(u); err != nil {
		return "", err
	}
	if err := r.store.Write(ctx, r.userPath(uid), u); err != nil {
		return "", r.storageError("write", err)
	}
	u.UID = uid
	return uid, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, uid string, p models.Profile) error {
	p.Normalize()
	if err := validate.Struct(p); err != nil {
		return err
	}
	if err := r.store.Merge(ctx, r.userPath(uid)+"/profile", p); err != nil {
		return r.storageError("merge", err)
	}
	return nil
}

func (r *Repository) UpdateSettings(ctx context.Context, uid string, s models.Settings) error {
	s.Normalize()
	if err := validate.Struct(s); err != nil {
		return err
	}
	if err := r.store.Merge(ctx, r.userPath(uid)+"/settings", s); err != nil {
		return r.storageError("merge", err)
	}
	return nil
}

// GetDay returns the intake record for (uid, date). A missing record reads
// as an empty day, not an error.
func (r *Repository) GetDay(ctx context.Context, uid, date string) (*models.Day, error) {
	raw, err := r.store.Read(ctx, r.dayPath(uid, date))
	if errors.Is(err, store.ErrNotFound) {
		return &models.Day{Date: date}, nil
	}
	if err != nil {
		return nil, r.storageError("read", err)
	}

	var d models.Day
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("%w: corrupt day record %s/%s: %v", store.ErrUnavailable, uid, date, err)
	}
	d.Normalize(date)
	return &d, nil
}

// SetDayTotal updates today's running total and milestone set in one merge.
func (r *Repository) SetDayTotal(ctx context.Context, uid, date string, intakeML int, milestones []int) error {
	fields := map[string]any{
		"date":       date,
		"intake":     intakeML,
		"milestones": milestones,
	}
	if err := r.store.Merge(ctx, r.dayPath(uid, date), fields); err != nil {
		return r.storageError("merge", err)
	}
	return nil
}

// ResetDay replaces the whole day record, dropping the entry log.
func (r *Repository) ResetDay(ctx context.Context, uid, date string) error {
	if err := r.store.Write(ctx, r.dayPath(uid, date), models.Day{Date: date}); err != nil {
		return r.storageError("write", err)
	}
	return nil
}

func (r *Repository) AppendEntry(ctx context.Context, uid, date string, e models.IntakeEntry) (string, error) {
	key, err := r.store.Append(ctx, r.dayPath(uid, date)+"/entries", e)
	if err != nil {
		return "", r.storageError("append", err)
	}
	return key, nil
}

func (r *Repository) SetLastActiveDate(ctx context.Context, uid, date string) error {
	if err := r.store.Merge(ctx, r.userPath(uid), map[string]any{"last_active_date": date}); err != nil {
		return r.storageError("merge", err)
	}
	return nil
}

// ListDayDates returns the dates that have stored records for the user.
func (r *Repository) ListDayDates(ctx context.Context, uid string) ([]string, error) {
	raw, err := r.store.Read(ctx, r.userPath(uid)+"/days")
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.storageError("read", err)
	}
	var days map[string]json.RawMessage
	if err := json.Unmarshal(raw, &days); err != nil {
		return nil, fmt.Errorf("%w: days node is not an object: %v", store.ErrUnavailable, err)
	}
	dates := make([]string, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	return dates, nil
}

func (r *Repository) DeleteDay(ctx context.Context, uid, date string) error {
	if err := r.store.Delete(ctx, r.dayPath(uid, date)); err != nil {
		return r.storageError("delete", err)
	}
	return nil
}

func (r *Repository) normalize(u *models.User) {
	u.Profile.Normalize()
	u.Settings.Normalize()
}
