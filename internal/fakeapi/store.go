package fakeapi

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// OTPTTL is how long an issued OTP stays valid.
	OTPTTL = 5 * time.Minute

	// CleanupInterval is how often expired OTPs are purged.
	CleanupInterval = 30 * time.Second
)

var (
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidOTP     = errors.New("invalid OTP")
	ErrOTPExpired     = errors.New("OTP expired")
	ErrNotCancellable = errors.New("order can only be cancelled before it is picked")
	ErrCannotReview   = errors.New("you can only review delivered products once")
	ErrPaymentMethod  = errors.New("only cash on delivery is supported")
	ErrEmptyOrder     = errors.New("order must contain at least one item")
	ErrBadAddress     = errors.New("delivery address not found")
	ErrBadVariant     = errors.New("variant not found")
	ErrBadQuantity    = errors.New("quantity must be positive")
)

type otpEntry struct {
	code      string
	expiresAt time.Time
}

type cartLine struct {
	cartID    int64
	productID int64
	variantID *int64
	quantity  int
}

type storedOrder struct {
	userID int64
	order  domain.Order
}

type storedAddress struct {
	userID  int64
	address domain.Address
}

type storedReview struct {
	userID int64
	review domain.Review
}

// MemoryStore holds the fake backend state.
type MemoryStore struct {
	mu  sync.RWMutex
	otp string
	now func() time.Time

	products      map[int64]domain.Product
	productOrder  []int64
	categories    []domain.Category
	subcategories []domain.Subcategory
	banners       []domain.Banner
	serviceable   map[string]bool

	users        map[int64]*domain.User
	usersByPhone map[string]int64
	otps         map[string]otpEntry
	carts        map[int64][]*cartLine
	orders       map[int64]*storedOrder
	addresses    map[int64]*storedAddress
	reviews      []*storedReview
	nextID       int64

	stopCleanup chan struct{}
	closeOnce   sync.Once
	wg          sync.WaitGroup
}

// NewMemoryStore creates a store seeded with the demo catalog. Every OTP
// request is answered with code otp.
func NewMemoryStore(otp string, now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	s := &MemoryStore{
		otp:          otp,
		now:          now,
		products:     make(map[int64]domain.Product),
		serviceable:  make(map[string]bool),
		users:        make(map[int64]*domain.User),
		usersByPhone: make(map[string]int64),
		otps:         make(map[string]otpEntry),
		carts:        make(map[int64][]*cartLine),
		orders:       make(map[int64]*storedOrder),
		addresses:    make(map[int64]*storedAddress),
		nextID:       1000,
		stopCleanup:  make(chan struct{}),
	}
	seed(s)

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

func (s *MemoryStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expireOTPs()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *MemoryStore) expireOTPs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for phone, e := range s.otps {
		if now.After(e.expiresAt) {
			delete(s.otps, phone)
		}
	}
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() {
	s.closeOnce.Do(func() {
		close(s.stopCleanup)
		s.wg.Wait()
	})
}

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

// Products lists products matching filter, sorted and paginated.
func (s *MemoryStore) Products(f domain.ProductFilter) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return paginate(s.filterProducts(f), f.Page, f.Limit)
}

// Search returns the page of products whose name or description contains query.
func (s *MemoryStore) Search(query string, f domain.ProductFilter) domain.SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f.Search = query
	all := s.filterProducts(f)
	page := f.Page
	if page <= 0 {
		page = 1
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	totalPages := (len(all) + limit - 1) / limit
	return domain.SearchResult{
		Products:   paginate(all, page, limit),
		Total:      len(all),
		Page:       page,
		TotalPages: totalPages,
	}
}

func (s *MemoryStore) filterProducts(f domain.ProductFilter) []domain.Product {
	if f.Pincode != "" && !s.serviceable[f.Pincode] {
		return []domain.Product{}
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]domain.Product, 0, len(s.productOrder))
	for _, id := range s.productOrder {
		p := s.products[id]
		if f.CategoryID != 0 && p.CategoryID != f.CategoryID {
			continue
		}
		if f.SubcategoryName != "" && (p.SubcategoryName == nil || !strings.EqualFold(*p.SubcategoryName, f.SubcategoryName)) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.ProductName), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		out = append(out, p)
	}

	switch f.Sort {
	case domain.SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price().LessThan(out[j].Price()) })
	case domain.SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price().GreaterThan(out[j].Price()) })
	case domain.SortLatest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	}
	return out
}

func paginate(ps []domain.Product, page, limit int) []domain.Product {
	if limit <= 0 {
		return ps
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(ps) {
		return []domain.Product{}
	}
	end := start + limit
	if end > len(ps) {
		end = len(ps)
	}
	return ps[start:end]
}

func (s *MemoryStore) Product(id int64) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category(nil), s.categories...)
}

func (s *MemoryStore) Category(id int64) (domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Category{}, ErrNotFound
}

func (s *MemoryStore) Subcategories(categoryID int64) []domain.Subcategory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Subcategory, 0, len(s.subcategories))
	for _, sc := range s.subcategories {
		if categoryID == 0 || sc.CategoryID == categoryID {
			out = append(out, sc)
		}
	}
	return out
}

func (s *MemoryStore) Banners(bannerType string) []domain.Banner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Banner, 0, len(s.banners))
	for _, b := range s.banners {
		if bannerType == "" || b.BannerType == bannerType {
			out = append(out, b)
		}
	}
	return out
}

// IssueOTP records an OTP for phone and reports whether the phone is unknown.
func (s *MemoryStore) IssueOTP(phone string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.otps[phone] = otpEntry{code: s.otp, expiresAt: s.now().Add(OTPTTL)}
	_, known := s.usersByPhone[phone]
	return !known
}

// VerifyOTP consumes the OTP for phone and returns the user, registering it
// on first login.
func (s *MemoryStore) VerifyOTP(phone, code string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.otps[phone]
	if !ok || e.code != code {
		return domain.User{}, ErrInvalidOTP
	}
	if s.now().After(e.expiresAt) {
		delete(s.otps, phone)
		return domain.User{}, ErrOTPExpired
	}
	delete(s.otps, phone)

	if id, ok := s.usersByPhone[phone]; ok {
		return *s.users[id], nil
	}
	id := s.id()
	u := &domain.User{ID: domain.IDFromInt(id), Phone: phone, Role: "customer"}
	s.users[id] = u
	s.usersByPhone[phone] = id
	return *u, nil
}

func (s *MemoryStore) User(id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return *u, nil
}

// Cart returns the user's cart lines joined with catalog data.
func (s *MemoryStore) Cart(userID int64) domain.CartResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.CartItem, 0, len(s.carts[userID]))
	total := decimal.Zero
	for _, l := range s.carts[userID] {
		item := s.cartItem(l)
		total = total.Add(item.LineTotal())
		items = append(items, item)
	}
	return domain.CartResponse{Items: items, Total: decimal.NewNullDecimal(total)}
}

func (s *MemoryStore) cartItem(l *cartLine) domain.CartItem {
	p := s.products[l.productID]
	vendorID := p.VendorID
	item := domain.CartItem{
		CartID:          domain.IDFromInt(l.cartID),
		ProductID:       p.ProductID,
		ProductName:     p.ProductName,
		BasePrice:       p.BasePrice,
		DiscountedPrice: p.DiscountedPrice,
		ImageURL:        p.PrimaryImage(),
		Quantity:        l.quantity,
		VendorID:        &vendorID,
	}
	if l.variantID != nil {
		if v, ok := p.Variant(*l.variantID); ok {
			id, name := v.VariantID, v.VariantName
			item.VariantID = &id
			item.VariantName = &name
			item.VariantPrice = decimal.NewNullDecimal(v.VariantPrice)
		}
	}
	return item
}

// AddToCart merges quantity into the user's line for productID/variantID.
func (s *MemoryStore) AddToCart(userID, productID int64, variantID *int64, quantity int) (int64, error) {
	if quantity <= 0 {
		return 0, ErrBadQuantity
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return 0, ErrNotFound
	}
	if variantID != nil {
		if _, ok := p.Variant(*variantID); !ok {
			return 0, ErrBadVariant
		}
	}
	for _, l := range s.carts[userID] {
		if l.productID == productID && sameVariant(l.variantID, variantID) {
			l.quantity += quantity
			return l.cartID, nil
		}
	}
	l := &cartLine{cartID: s.id(), productID: productID, variantID: variantID, quantity: quantity}
	s.carts[userID] = append(s.carts[userID], l)
	return l.cartID, nil
}

func (s *MemoryStore) UpdateCartLine(userID, cartID int64, quantity int) error {
	if quantity <= 0 {
		return ErrBadQuantity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.carts[userID] {
		if l.cartID == cartID {
			l.quantity = quantity
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) RemoveCartLine(userID, cartID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[userID]
	for i, l := range lines {
		if l.cartID == cartID {
			s.carts[userID] = append(lines[:i:i], lines[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) ClearCart(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
}

func sameVariant(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// CreateOrder validates req against the catalog and the user's addresses.
func (s *MemoryStore) CreateOrder(userID int64, req domain.CreateOrderRequest) (int64, error) {
	if len(req.Items) == 0 {
		return 0, ErrEmptyOrder
	}
	if req.PaymentMethod != domain.PaymentCOD.WireValue() {
		return 0, ErrPaymentMethod
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	addr, ok := s.addresses[idNumber(req.DeliveryAddressID)]
	if !ok || addr.userID != userID {
		return 0, ErrBadAddress
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		p, ok := s.products[it.ProductID]
		if !ok {
			return 0, ErrNotFound
		}
		if it.Quantity <= 0 {
			return 0, ErrBadQuantity
		}
		oi := domain.OrderItem{
			ProductID:       p.ProductID,
			ProductName:     p.ProductName,
			BasePrice:       decimal.NewNullDecimal(p.BasePrice),
			DiscountedPrice: p.DiscountedPrice,
			ImageURL:        p.PrimaryImage(),
			Quantity:        it.Quantity,
			Price:           decimal.NewNullDecimal(it.Price),
			Subtotal:        decimal.NewNullDecimal(it.Subtotal),
		}
		if it.VariantID != nil {
			v, ok := p.Variant(*it.VariantID)
			if !ok {
				return 0, ErrBadVariant
			}
			id, name := v.VariantID, v.VariantName
			oi.VariantID = &id
			oi.VariantName = &name
			oi.VariantPrice = decimal.NewNullDecimal(v.VariantPrice)
		}
		items = append(items, oi)
	}

	id := s.id()
	now := s.now().UTC().Format(time.RFC3339)
	a := addr.address
	s.orders[id] = &storedOrder{
		userID: userID,
		order: domain.Order{
			OrderID:         domain.IDFromInt(id),
			OrderStatus:     domain.OrderStatusPending,
			TotalAmount:     req.TotalAmount,
			PaymentMethod:   req.PaymentMethod,
			CreatedAt:       now,
			UpdatedAt:       now,
			DeliveryAddress: &a,
			Items:           items,
		},
	}
	return id, nil
}

// OrdersByUser lists the user's orders, newest first.
func (s *MemoryStore) OrdersByUser(userID int64) []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Order, 0)
	for _, o := range s.orders {
		if o.userID == userID {
			out = append(out, o.order)
		}
	}
	sort.Slice(out, func(i, j int) bool { return idNumber(out[i].OrderID) > idNumber(out[j].OrderID) })
	return out
}

func (s *MemoryStore) Order(userID, orderID int64) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[orderID]
	if !ok {
		return domain.Order{}, ErrNotFound
	}
	if o.userID != userID {
		return domain.Order{}, ErrForbidden
	}
	return o.order, nil
}

func (s *MemoryStore) CancelOrder(userID, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	if o.userID != userID {
		return ErrForbidden
	}
	if !o.order.OrderStatus.Cancellable() {
		return ErrNotCancellable
	}
	o.order.OrderStatus = domain.OrderStatusCancelled
	o.order.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	return nil
}

// SetOrderStatus moves an order along its lifecycle, as the vendor would.
func (s *MemoryStore) SetOrderStatus(orderID int64, status domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	o.order.OrderStatus = status
	o.order.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	return nil
}

// Addresses lists the user's addresses in creation order.
func (s *MemoryStore) Addresses(userID int64) []domain.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Address, 0)
	for _, a := range s.addresses {
		if a.userID == userID {
			out = append(out, a.address)
		}
	}
	sort.Slice(out, func(i, j int) bool { return idNumber(out[i].AddressID) < idNumber(out[j].AddressID) })
	return out
}

// CreateAddress stores in; the user's first address becomes the default.
func (s *MemoryStore) CreateAddress(userID int64, in domain.AddressInput) domain.Address {
	s.mu.Lock()
	defer s.mu.Unlock()

	first := true
	for _, a := range s.addresses {
		if a.userID == userID {
			first = false
			break
		}
	}
	id := s.id()
	addr := addressFromInput(domain.IDFromInt(id), in)
	addr.IsDefault = in.IsDefault || first
	if addr.IsDefault {
		s.clearDefault(userID)
	}
	s.addresses[id] = &storedAddress{userID: userID, address: addr}
	return addr
}

func (s *MemoryStore) UpdateAddress(userID, id int64, in domain.AddressInput) (domain.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.addresses[id]
	if !ok {
		return domain.Address{}, ErrNotFound
	}
	if a.userID != userID {
		return domain.Address{}, ErrForbidden
	}
	wasDefault := a.address.IsDefault
	addr := addressFromInput(a.address.AddressID, in)
	addr.IsDefault = in.IsDefault || wasDefault
	if addr.IsDefault && !wasDefault {
		s.clearDefault(userID)
	}
	a.address = addr
	return addr, nil
}

func (s *MemoryStore) DeleteAddress(userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.addresses[id]
	if !ok {
		return ErrNotFound
	}
	if a.userID != userID {
		return ErrForbidden
	}
	delete(s.addresses, id)
	return nil
}

func (s *MemoryStore) SetDefaultAddress(userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.addresses[id]
	if !ok {
		return ErrNotFound
	}
	if a.userID != userID {
		return ErrForbidden
	}
	s.clearDefault(userID)
	a.address.IsDefault = true
	return nil
}

func (s *MemoryStore) clearDefault(userID int64) {
	for _, a := range s.addresses {
		if a.userID == userID {
			a.address.IsDefault = false
		}
	}
}

func addressFromInput(id domain.ID, in domain.AddressInput) domain.Address {
	return domain.Address{
		AddressID:    id,
		AddressType:  in.AddressType,
		FullName:     in.FullName,
		MobileNumber: in.MobileNumber,
		AddressLine1: in.AddressLine1,
		AddressLine2: in.AddressLine2,
		Landmark:     in.Landmark,
		Pincode:      in.Pincode,
		City:         in.City,
		State:        in.State,
	}
}

func (s *MemoryStore) ProductReviews(productID int64) []domain.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Review, 0)
	for _, r := range s.reviews {
		if r.review.ProductID == domain.IDFromInt(productID) && r.review.Status == "approved" {
			out = append(out, r.review)
		}
	}
	return out
}

func (s *MemoryStore) MyReviews(userID int64) []domain.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Review, 0)
	for _, r := range s.reviews {
		if r.userID == userID {
			out = append(out, r.review)
		}
	}
	return out
}

// CanReview is true when the user's delivered order contains productID and
// the pair has not been reviewed yet.
func (s *MemoryStore) CanReview(userID, orderID, productID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canReview(userID, orderID, productID)
}

func (s *MemoryStore) canReview(userID, orderID, productID int64) (bool, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return false, ErrNotFound
	}
	if o.userID != userID {
		return false, ErrForbidden
	}
	if o.order.OrderStatus != domain.OrderStatusDelivered {
		return false, nil
	}
	contains := false
	for _, it := range o.order.Items {
		if it.ProductID == productID {
			contains = true
			break
		}
	}
	if !contains {
		return false, nil
	}
	for _, r := range s.reviews {
		if r.userID == userID && r.review.OrderID == domain.IDFromInt(orderID) && r.review.ProductID == domain.IDFromInt(productID) {
			return false, nil
		}
	}
	return true, nil
}

func (s *MemoryStore) CreateReview(userID int64, in domain.ReviewInput) (domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.canReview(userID, idNumber(in.OrderID), idNumber(in.ProductID))
	if err != nil {
		return domain.Review{}, err
	}
	if !ok {
		return domain.Review{}, ErrCannotReview
	}
	name := ""
	if u, ok := s.users[userID]; ok {
		name = u.Name
	}
	r := domain.Review{
		ReviewID:  domain.IDFromInt(s.id()),
		ProductID: in.ProductID,
		OrderID:   in.OrderID,
		UserName:  name,
		Rating:    in.Rating,
		Comment:   in.Comment,
		Status:    "approved",
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	}
	s.reviews = append(s.reviews, &storedReview{userID: userID, review: r})
	return r, nil
}
