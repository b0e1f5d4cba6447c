package services

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/canvistapp/canvist/internal/db"
	"github.com/canvistapp/canvist/internal/models"
	"github.com/canvistapp/canvist/internal/storage"
	"github.com/canvistapp/canvist/internal/workflow"
)

// fakeOrderRepo keeps orders in memory and records which mutations ran. The
// transactional guard re-validation of the real store is out of scope here;
// these tests exercise the service-level guard checks.
type fakeOrderRepo struct {
	orders map[string]*models.Order

	payCalls       int
	approveCalls   int
	revisionCalls  int
	overrideCalls  int
	cancelCalls    int
	previewCalls   int
	addedItems     []*models.OrderItem
	lastRevision   string
	lastOverride   workflow.ItemStatus
	lastTracking   string
	lastShipping   int
	forcedMutation error
}

func newFakeOrderRepo(orders ...*models.Order) *fakeOrderRepo {
	repo := &fakeOrderRepo{orders: make(map[string]*models.Order)}
	for _, order := range orders {
		if order.ID == uuid.Nil {
			order.ID = uuid.New()
		}
		for _, item := range order.Items {
			if item.ID == uuid.Nil {
				item.ID = uuid.New()
			}
			item.OrderID = order.ID
		}
		repo.orders[order.PublicID] = order
	}
	return repo
}

func (r *fakeOrderRepo) byID(orderID uuid.UUID) *models.Order {
	for _, order := range r.orders {
		if order.ID == orderID {
			return order
		}
	}
	return nil
}

func (r *fakeOrderRepo) Create(_ context.Context, order *models.Order) error {
	order.ID = uuid.New()
	order.Status = workflow.OrderDraft
	order.CreatedAt = time.Now()
	r.orders[order.PublicID] = order
	return nil
}

func (r *fakeOrderRepo) GetByPublicID(_ context.Context, publicID string) (*models.Order, error) {
	order, ok := r.orders[publicID]
	if !ok {
		return nil, errNotFoundForTest()
	}
	return order, nil
}

func (r *fakeOrderRepo) GetItemByPublicID(_ context.Context, orderID uuid.UUID, itemPublicID string) (*models.OrderItem, error) {
	order := r.byID(orderID)
	if order == nil {
		return nil, errNotFoundForTest()
	}
	for _, item := range order.Items {
		if item.PublicID == itemPublicID {
			return item, nil
		}
	}
	return nil, errNotFoundForTest()
}

func (r *fakeOrderRepo) ListRecent(context.Context, int) ([]*models.Order, error) {
	var out []*models.Order
	for _, order := range r.orders {
		out = append(out, order)
	}
	return out, nil
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Order, error) {
	var out []*models.Order
	for _, order := range r.orders {
		if order.UserID != nil && *order.UserID == userID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) AddItem(_ context.Context, orderID uuid.UUID, item *models.OrderItem) error {
	if r.forcedMutation != nil {
		return r.forcedMutation
	}
	order := r.byID(orderID)
	item.ID = uuid.New()
	item.OrderID = orderID
	order.Items = append(order.Items, item)
	r.addedItems = append(r.addedItems, item)
	return nil
}

func (r *fakeOrderRepo) ConfigureItem(_ context.Context, _, _ uuid.UUID, _ *models.OrderItem) error {
	return r.forcedMutation
}

func (r *fakeOrderRepo) SetShippingAddress(_ context.Context, orderID uuid.UUID, address *models.ShippingAddress, shippingBani int) error {
	if r.forcedMutation != nil {
		return r.forcedMutation
	}
	order := r.byID(orderID)
	order.ShippingAddress = address
	order.ShippingBani = shippingBani
	r.lastShipping = shippingBani
	return nil
}

func (r *fakeOrderRepo) Pay(_ context.Context, _ uuid.UUID) error {
	r.payCalls++
	return r.forcedMutation
}

func (r *fakeOrderRepo) ApproveItem(_ context.Context, _, _ uuid.UUID) error {
	r.approveCalls++
	return r.forcedMutation
}

func (r *fakeOrderRepo) RequestRevision(_ context.Context, _, _ uuid.UUID, notes string) error {
	r.revisionCalls++
	r.lastRevision = notes
	return r.forcedMutation
}

func (r *fakeOrderRepo) MarkPreviewReady(_ context.Context, _, _ uuid.UUID) error {
	r.previewCalls++
	return r.forcedMutation
}

func (r *fakeOrderRepo) OverrideItemStatus(_ context.Context, _, _ uuid.UUID, target workflow.ItemStatus, trackingNumber string) error {
	r.overrideCalls++
	r.lastOverride = target
	r.lastTracking = trackingNumber
	return r.forcedMutation
}

func (r *fakeOrderRepo) Cancel(_ context.Context, _ uuid.UUID) error {
	r.cancelCalls++
	return r.forcedMutation
}

type fakeUploadRepo struct {
	created     []*models.Upload
	deletedKeys map[uuid.UUID]string
	assigned    map[uuid.UUID]uuid.UUID
	forced      error
}

func newFakeUploadRepo() *fakeUploadRepo {
	return &fakeUploadRepo{
		deletedKeys: make(map[uuid.UUID]string),
		assigned:    make(map[uuid.UUID]uuid.UUID),
	}
}

func (r *fakeUploadRepo) Create(_ context.Context, upload *models.Upload) error {
	if r.forced != nil {
		return r.forced
	}
	upload.ID = uuid.New()
	upload.CreatedAt = time.Now()
	r.created = append(r.created, upload)
	return nil
}

func (r *fakeUploadRepo) GetByID(_ context.Context, _, uploadID uuid.UUID) (*models.Upload, error) {
	for _, upload := range r.created {
		if upload.ID == uploadID {
			return upload, nil
		}
	}
	return nil, errNotFoundForTest()
}

func (r *fakeUploadRepo) DeleteCustomerPhoto(_ context.Context, _, uploadID uuid.UUID) (string, error) {
	if r.forced != nil {
		return "", r.forced
	}
	key, ok := r.deletedKeys[uploadID]
	if !ok {
		return "", errNotFoundForTest()
	}
	return key, nil
}

func (r *fakeUploadRepo) AssignToItem(_ context.Context, _, uploadID, itemID uuid.UUID) error {
	if r.forced != nil {
		return r.forced
	}
	r.assigned[uploadID] = itemID
	return nil
}

type fakeEventRepo struct {
	events []*models.Event
}

func (r *fakeEventRepo) ListByOrder(_ context.Context, _ uuid.UUID) ([]*models.Event, error) {
	return r.events, nil
}

type fakeUserRepo struct {
	byEmail map[string]*models.User
	forced  error
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{byEmail: make(map[string]*models.User)}
	for _, user := range users {
		if user.ID == uuid.Nil {
			user.ID = uuid.New()
		}
		repo.byEmail[user.Email] = user
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if r.forced != nil {
		return r.forced
	}
	if _, taken := r.byEmail[user.Email]; taken {
		return errDuplicateForTest()
	}
	user.ID = uuid.New()
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, errNotFoundForTest()
	}
	return user, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, user := range r.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, errNotFoundForTest()
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	user, err := r.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	return nil
}

// fakeStorage is an in-memory storage.Provider.
type fakeStorage struct {
	objects      map[string][]byte
	signedUpload bool
	deleted      []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Put(_ context.Context, key, _ string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *fakeStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, errNotFoundForTest()
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStorage) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.objects[key]
	return ok, nil
}

func (s *fakeStorage) SignedUploadURL(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	if !s.signedUpload {
		return "", storage.ErrSignedUploadsUnsupported
	}
	return "https://storage.example/upload/" + key, nil
}

func (s *fakeStorage) SignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.example/download/" + key, nil
}

func errNotFoundForTest() error { return db.ErrNotFound }

func errStateConflictForTest() error { return db.ErrStateConflict }

func errDuplicateForTest() error { return db.ErrDuplicateEmail }

// recordingEmailSender captures workflow notifications.
type recordingEmailSender struct {
	orderPaid        []string
	revisionRequests []string
	previewReady     []string
}

func (s *recordingEmailSender) SendOrderPaid(_ context.Context, order *models.Order) error {
	s.orderPaid = append(s.orderPaid, order.PublicID)
	return nil
}

func (s *recordingEmailSender) SendRevisionRequested(_ context.Context, order *models.Order, itemPublicID, _ string) error {
	s.revisionRequests = append(s.revisionRequests, order.PublicID+"/"+itemPublicID)
	return nil
}

func (s *recordingEmailSender) SendPreviewReady(_ context.Context, order *models.Order) error {
	s.previewReady = append(s.previewReady, order.PublicID)
	return nil
}
