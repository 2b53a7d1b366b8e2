package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"it-asset-management/internal/adapters/persistence/models"
	"it-asset-management/internal/adapters/persistence/repositories"
	"it-asset-management/internal/config"
	"it-asset-management/internal/core/domain"
	"it-asset-management/internal/pkg/mailer"
)

func testConfig() *config.Config {
	return &config.Config{
		APIBaseURL: "http://localhost:5000",
		JWT: config.JWTConfig{
			Secret:     "test-secret",
			SessionTTL: time.Hour,
			BcryptCost: bcrypt.MinCost,
		},
		Redis: config.RedisConfig{ResetTokenTTL: time.Hour},
		Notify: config.NotifyConfig{
			Workers:     1,
			QueueSize:   4,
			MaxAttempts: 3,
			Backoff:     time.Minute,
			SendTimeout: time.Second,
		},
	}
}

func strPtr(s string) *string { return &s }

// ------------------------------------------------------------
// users
// ------------------------------------------------------------

type memUserRepo struct {
	repositories.UserRepository
	mu    sync.Mutex
	users map[string]*models.User

	// failPasswordUpdate is returned once by the next UpdatePasswordByEmail
	failPasswordUpdate error
}

func newMemUserRepo(users ...*models.User) *memUserRepo {
	r := &memUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.ID == "" {
		u.ID = "7b0e5c1e-0000-4000-8000-00000000000" + string(rune('0'+len(r.users)))
	}
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) Update(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) UpdatePasswordByEmail(ctx context.Context, email, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failPasswordUpdate; err != nil {
		r.failPasswordUpdate = nil
		return err
	}
	for _, u := range r.users {
		if u.Email == email {
			u.Password = hash
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *memUserRepo) EmailTakenByOther(ctx context.Context, email, excludeID string) (bool, error) {
	u, err := r.GetByEmail(ctx, email)
	return err == nil && u.ID != excludeID, nil
}

// ------------------------------------------------------------
// equipment
// ------------------------------------------------------------

type memEquipmentRepo struct {
	repositories.EquipmentRepository
	items       map[string]*models.Equipment
	seq         map[string]int64
	takenTags   map[string]bool
	lastUpdates map[string]interface{}
}

func newMemEquipmentRepo(items ...*models.Equipment) *memEquipmentRepo {
	r := &memEquipmentRepo{items: make(map[string]*models.Equipment), seq: make(map[string]int64)}
	for _, e := range items {
		r.items[e.ID] = e
	}
	return r
}

func (r *memEquipmentRepo) Create(ctx context.Context, e *models.Equipment, tag func(seq int64, attempt int) string) error {
	if e.SerialNumber != nil {
		if ok, _ := r.SerialExists(ctx, *e.SerialNumber, ""); ok {
			return repositories.ErrDuplicateSerial
		}
	}
	// A collided attempt leaves the sequence untouched, as a rolled back transaction does
	next := r.seq[e.Category] + 1
	e.AssetID = ""
	for attempt := 0; attempt < 3; attempt++ {
		if candidate := tag(next, attempt); !r.takenTags[candidate] {
			e.AssetID = candidate
			break
		}
	}
	if e.AssetID == "" {
		return repositories.ErrDuplicateAssetTag
	}
	r.seq[e.Category] = next
	if e.ID == "" {
		e.ID = "3f6c2a10-0000-4000-8000-0000000000" + string(rune('a'+len(r.items))) + "0"
	}
	r.items[e.ID] = e
	return nil
}

func (r *memEquipmentRepo) GetByID(ctx context.Context, id string) (*models.Equipment, error) {
	e, ok := r.items[id]
	if !ok || e.IsDeleted {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *memEquipmentRepo) FindByID(ctx context.Context, id string) (*models.Equipment, error) {
	e, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *memEquipmentRepo) SerialExists(ctx context.Context, serial, excludeID string) (bool, error) {
	for id, e := range r.items {
		if id != excludeID && e.SerialNumber != nil && *e.SerialNumber == serial {
			return true, nil
		}
	}
	return false, nil
}

func (r *memEquipmentRepo) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	e, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.lastUpdates = updates

	text := map[string]**string{
		"model":              &e.Model,
		"serial_number":      &e.SerialNumber,
		"location":           &e.Location,
		"comment":            &e.Comment,
		"assignee_name":      &e.AssigneeName,
		"position":           &e.Position,
		"employee_email":     &e.EmployeeEmail,
		"phone_number":       &e.PhoneNumber,
		"department":         &e.Department,
		"damage_description": &e.DamageDescription,
	}
	for col, v := range updates {
		if dst, ok := text[col]; ok {
			if v == nil {
				*dst = nil
			} else {
				s := v.(string)
				*dst = &s
			}
			continue
		}
		switch col {
		case "status":
			e.Status = v.(domain.EquipmentStatus)
		case "category":
			e.Category = v.(string)
		case "purchase_price":
			e.PurchasePrice = v.(float64)
		case "updated_at":
			e.UpdatedAt = v.(time.Time)
		}
	}
	return nil
}

func (r *memEquipmentRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	e, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.IsDeleted = true
	e.UpdatedAt = at
	return nil
}

type recordingNotifier struct {
	enqueued []*models.Equipment
}

func (n *recordingNotifier) Enqueue(ctx context.Context, e *models.Equipment) {
	n.enqueued = append(n.enqueued, e)
}

// ------------------------------------------------------------
// outbox
// ------------------------------------------------------------

type memOutbox struct {
	mu        sync.Mutex
	rows      map[string]*models.NotificationOutbox
	createErr error
	n         int
}

func newMemOutbox() *memOutbox {
	return &memOutbox{rows: make(map[string]*models.NotificationOutbox)}
}

func (o *memOutbox) Create(ctx context.Context, n *models.NotificationOutbox) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.createErr != nil {
		return o.createErr
	}
	o.n++
	if n.ID == "" {
		n.ID = "outbox-" + string(rune('0'+o.n))
	}
	cp := *n
	o.rows[n.ID] = &cp
	return nil
}

func (o *memOutbox) Claim(ctx context.Context, id string, now time.Time) (*models.NotificationOutbox, bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	row, ok := o.rows[id]
	if !ok || row.State != domain.OutboxPending || row.NextAttemptAt.After(now) {
		return nil, false, nil
	}
	row.State = domain.OutboxProcessing
	row.ClaimedAt = &now
	cp := *row
	return &cp, true, nil
}

func (o *memOutbox) ListDue(ctx context.Context, now time.Time, limit int) ([]string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var ids []string
	for id, row := range o.rows {
		if row.State == domain.OutboxPending && !row.NextAttemptAt.After(now) && len(ids) < limit {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (o *memOutbox) MarkSent(ctx context.Context, id string, at time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rows[id].State = domain.OutboxSent
	o.rows[id].SentAt = &at
	return nil
}

func (o *memOutbox) MarkRetry(ctx context.Context, id string, attempts int, lastErr string, next time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	row := o.rows[id]
	row.State = domain.OutboxPending
	row.Attempts = attempts
	row.LastError = lastErr
	row.NextAttemptAt = next
	row.ClaimedAt = nil
	return nil
}

func (o *memOutbox) MarkDead(ctx context.Context, id string, attempts int, lastErr string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	row := o.rows[id]
	row.State = domain.OutboxDead
	row.Attempts = attempts
	row.LastError = lastErr
	return nil
}

func (o *memOutbox) ReleaseStale(ctx context.Context, claimedBefore time.Time) (int64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var n int64
	for _, row := range o.rows {
		if row.State == domain.OutboxProcessing && row.ClaimedAt != nil && row.ClaimedAt.Before(claimedBefore) {
			row.State = domain.OutboxPending
			row.ClaimedAt = nil
			n++
		}
	}
	return n, nil
}

func (o *memOutbox) get(id string) models.NotificationOutbox {
	o.mu.Lock()
	defer o.mu.Unlock()
	return *o.rows[id]
}

// ------------------------------------------------------------
// mail
// ------------------------------------------------------------

type fakeMailer struct {
	mu       sync.Mutex
	disabled bool
	err      error
	sent     []mailer.Message
}

func (m *fakeMailer) Enabled() bool { return !m.disabled }

func (m *fakeMailer) DefaultRecipient() string { return "it@example.com" }

func (m *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disabled {
		return mailer.ErrDisabled
	}
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}
