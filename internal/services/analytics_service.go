package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"payment-service/internal/domain"
	"payment-service/internal/repository"
)

const (
	PeriodAll   = "all"
	Period30d   = "30d"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

var ErrUnknownPeriod = errors.New("unknown analytics period")

type granularity string

const (
	granularityDay   granularity = "day"
	granularityMonth granularity = "month"
)

type AnalyticsService struct {
	store repository.Store
	now   func() time.Time
}

func NewAnalyticsService(store repository.Store) *AnalyticsService {
	return &AnalyticsService{store: store, now: time.Now}
}

// SalesReport scans the order history and buckets revenue by day or month.
// Every bucket in the requested range is pre-seeded to zero so callers see
// gaps as zero points, never missing ones.
func (s *AnalyticsService) SalesReport(ctx context.Context, period string) (*domain.SalesReport, error) {
	if period == "" {
		period = PeriodAll
	}
	gran, start, end, err := s.resolvePeriod(period)
	if err != nil {
		return nil, err
	}

	buckets := seedBuckets(gran, start, end)

	orders, err := s.store.Orders().FindAll(ctx)
	if err != nil {
		return nil, err
	}

	var totalRevenue float64
	var totalOrders int
	customers := make(map[string]struct{})
	products := make(map[string]*domain.TopProduct)

	for i := range orders {
		order := &orders[i]
		if !order.Status.CountsTowardSales() || order.PaymentStatus == domain.PaymentStatusFailed {
			continue
		}
		ref := order.ReferenceDate()
		if start != nil && ref.Before(*start) {
			continue
		}
		if end != nil && ref.After(*end) {
			continue
		}

		revenue := orderRevenue(order)
		totalRevenue += revenue
		totalOrders++

		if key := customerKey(order); key != "" {
			customers[key] = struct{}{}
		}

		for _, item := range order.Items {
			lineTotal := item.LineTotal()
			if lineTotal <= 0 {
				continue
			}
			tp, ok := products[item.ProductID]
			if !ok {
				tp = &domain.TopProduct{ProductID: item.ProductID, Name: item.Name}
				products[item.ProductID] = tp
			}
			tp.Revenue += lineTotal
			tp.Quantity += item.Quantity
		}

		key := bucketKey(gran, ref)
		bucket, ok := buckets[key]
		if !ok {
			// Outside the seeded range; happens for period "all".
			bucket = newBucket(gran, ref)
			buckets[key] = bucket
		}
		bucket.Revenue += revenue
		bucket.Orders++
	}

	series := make([]domain.SalesBucket, 0, len(buckets))
	for _, bucket := range buckets {
		series = append(series, *bucket)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Key < series[j].Key })

	top := make([]domain.TopProduct, 0, len(products))
	for _, tp := range products {
		top = append(top, *tp)
	}
	sort.Slice(top, func(i, j int) bool { return top[i].Revenue > top[j].Revenue })
	if len(top) > 5 {
		top = top[:5]
	}

	var averageBasket float64
	if totalOrders > 0 {
		averageBasket = totalRevenue / float64(totalOrders)
	}

	return &domain.SalesReport{
		Period:     period,
		SeriesType: string(gran),
		Metrics: domain.SalesMetrics{
			TotalRevenue:   totalRevenue,
			TotalOrders:    totalOrders,
			AverageBasket:  averageBasket,
			TotalCustomers: len(customers),
			TopProducts:    top,
		},
		Series: series,
	}, nil
}

func (s *AnalyticsService) resolvePeriod(period string) (granularity, *time.Time, *time.Time, error) {
	now := s.now()
	switch period {
	case PeriodAll:
		return granularityMonth, nil, nil, nil
	case Period30d:
		start := startOfDay(now.AddDate(0, 0, -29))
		end := endOfDay(now)
		return granularityDay, &start, &end, nil
	case PeriodMonth:
		// Month to date: no trailing zero buckets for days that have not
		// happened yet.
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end := endOfDay(now)
		return granularityDay, &start, &end, nil
	case PeriodYear:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		end := endOfDay(time.Date(now.Year(), 12, 31, 0, 0, 0, 0, now.Location()))
		return granularityMonth, &start, &end, nil
	}
	return "", nil, nil, ErrUnknownPeriod
}

func seedBuckets(gran granularity, start, end *time.Time) map[string]*domain.SalesBucket {
	buckets := make(map[string]*domain.SalesBucket)
	if start == nil || end == nil {
		return buckets
	}
	for t := *start; !t.After(*end); {
		buckets[bucketKey(gran, t)] = newBucket(gran, t)
		if gran == granularityDay {
			t = t.AddDate(0, 0, 1)
		} else {
			t = t.AddDate(0, 1, 0)
		}
	}
	return buckets
}

func bucketKey(gran granularity, t time.Time) string {
	if gran == granularityDay {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01")
}

func newBucket(gran granularity, t time.Time) *domain.SalesBucket {
	if gran == granularityDay {
		return &domain.SalesBucket{
			Key:   t.Format("2006-01-02"),
			Date:  t.Format("2006-01-02"),
			Label: t.Format("Jan 2"),
		}
	}
	return &domain.SalesBucket{
		Key:   t.Format("2006-01"),
		Date:  t.Format("2006-01") + "-01",
		Label: t.Format("Jan 2006"),
	}
}

// orderRevenue prefers the stored order total and falls back to summing line
// totals when the field is absent or garbage.
func orderRevenue(order *domain.Order) float64 {
	total := order.Total
	if !math.IsNaN(total) && !math.IsInf(total, 0) && total > 0 {
		return total
	}
	var sum float64
	for _, item := range order.Items {
		sum += item.LineTotal()
	}
	return sum
}

// customerKey dedupes customers by account, falling back to email and then
// phone for guest checkouts. Prefixes keep the namespaces apart.
func customerKey(order *domain.Order) string {
	c := order.Customer
	switch {
	case c.UserID != "":
		return "u:" + c.UserID
	case c.Email != "":
		return "e:" + c.Email
	case c.Phone != "":
		return "p:" + c.Phone
	}
	return ""
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
