package server

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"p2p_market/internal/domain/entity"
	"p2p_market/internal/domain/service/offerbook"
	"p2p_market/internal/infrastructure/egress"
	"p2p_market/pkg/lox"
	"p2p_market/pkg/rest"
)

func newRESTOffer(offer entity.Offer) rest.Offer {
	o := rest.Offer{
		ID:             offer.ID,
		Side:           offer.Side.String(),
		Price:          number(offer.Price),
		MinAmount:      number(offer.MinAmount),
		MaxAmount:      number(offer.MaxAmount),
		Quantity:       number(offer.AvailableQuantity),
		Maker:          offer.MakerName,
		MakerID:        offer.MakerID,
		PaymentMethods: offer.PaymentMethods,
		CompletionRate: offer.CompletionRate,
		TotalOrders:    offer.TotalOrders,
		IsMerchant:     offer.IsMerchant(),
		IsBlockTrade:   offer.IsBlockTrade(),
		IsOnline:       offer.IsOnline,
		IsTriangle:     offer.IsTriangle,
		LastLogout:     offer.LastLogoutTime,
	}

	if o.PaymentMethods == nil {
		o.PaymentMethods = []string{}
	}

	if offer.IsMerchant() {
		tier := offer.MerchantTier.String()
		badge := offer.MerchantTier.Badge()
		o.MerchantType = &tier
		o.MerchantBadge = &badge
	}

	return o
}

func newRESTOffers(result offerbook.Result) rest.OffersResponse {
	return rest.OffersResponse{
		Success:           true,
		Offers:            lox.Map(result.Offers, newRESTOffer),
		Total:             len(result.Offers),
		Side:              result.Side.String(),
		PagesLoaded:       result.PagesLoaded,
		Source:            string(result.Source),
		Degraded:          result.Degraded,
		CapturedAt:        result.CapturedAt,
		AutoUpdateEnabled: result.AutoUpdate,
	}
}

func newRESTStatus(result offerbook.Result) rest.StatusResponse {
	if result.Status == nil {
		return rest.StatusResponse{Success: result.Success, Sides: []rest.SideStatus{}}
	}

	return rest.StatusResponse{
		Success:           result.Success,
		AutoUpdateEnabled: result.Status.AutoUpdateEnabled,
		StoreAvailable:    result.Status.StoreAvailable,
		Sides:             lox.Map(result.Status.Sides, newRESTSideStatus),
		Stats:             newRESTEgressStats(result.Status.Egress),
	}
}

func newRESTSideStatus(status offerbook.SideStatus) rest.SideStatus {
	s := rest.SideStatus{
		Side:        status.Side.String(),
		OffersCount: status.OffersCount,
	}

	if status.Stored {
		lastUpdate := status.LastUpdate
		s.LastUpdate = &lastUpdate
		s.AgeSeconds = seconds(status.Age)
	}

	if status.Cached {
		s.CacheAgeSeconds = seconds(status.CacheAge)
	}

	return s
}

func newRESTEgressStats(stats egress.StatsSnapshot) rest.EgressStats {
	return rest.EgressStats{
		TotalRequests:      stats.TotalRequests,
		ProxyRequests:      stats.ProxyRequests,
		DirectRequests:     stats.DirectRequests,
		ProxyErrors:        stats.ProxyErrors,
		SuccessfulRequests: stats.SuccessfulRequests,
		SuccessRate:        stats.SuccessRate,
		ProxyUsageRate:     stats.ProxyUsageRate,
	}
}

func number(d decimal.Decimal) jsoniter.Number {
	return jsoniter.Number(d.String())
}

func seconds(d time.Duration) *float64 {
	s := d.Seconds()

	return &s
}
