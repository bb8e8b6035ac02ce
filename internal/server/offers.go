package server

import (
	"cmp"
	"context"
	"fmt"
	"net/http"

	"git.appkode.ru/pub/go/failure"

	"p2p_market/internal/domain/entity"
	"p2p_market/internal/domain/service/offerbook"
	"p2p_market/pkg/errcodes"
	"p2p_market/pkg/httpx/reply"
	"p2p_market/pkg/httpx/req"
)

type offerBook interface {
	GetOffers(ctx context.Context, request offerbook.ReadRequest) offerbook.Result
}

type OffersServer struct {
	offerBook offerBook
}

func NewOffersServer(offerBook offerBook) OffersServer {
	return OffersServer{
		offerBook: offerBook,
	}
}

func (s OffersServer) getV1Offers(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	statusOnly, err := req.QueryBool(r, "status")
	if err != nil {
		return fmt.Errorf("req.QueryBool: %w", err)
	}

	if statusOnly {
		result := s.offerBook.GetOffers(ctx, offerbook.ReadRequest{StatusOnly: true})
		reply.JSON(ctx, w, http.StatusOK, newRESTStatus(result))

		return nil
	}

	request, err := readOffersRequest(r)
	if err != nil {
		return err
	}

	result := s.offerBook.GetOffers(ctx, request)
	if result.Err != nil {
		reply.Fail(ctx, w, statusFor(result.Err.Code), result.Err.Code, result.Err.Message)

		return nil
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTOffers(result))

	return nil
}

func readOffersRequest(r *http.Request) (offerbook.ReadRequest, error) {
	side, err := entity.ParseSide(cmp.Or(r.URL.Query().Get("side"), entity.SideSell.String()))
	if err != nil {
		return offerbook.ReadRequest{}, failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("entity.ParseSide: %w", err),
			failure.WithCode(errcodes.InvalidSide),
		)
	}

	force, err := req.QueryBool(r, "force")
	if err != nil {
		return offerbook.ReadRequest{}, fmt.Errorf("req.QueryBool: %w", err)
	}

	quick, err := req.QueryBool(r, "quick")
	if err != nil {
		return offerbook.ReadRequest{}, fmt.Errorf("req.QueryBool: %w", err)
	}

	return offerbook.ReadRequest{
		Side:  side,
		Force: force,
		Quick: quick,
	}, nil
}

func statusFor(code failure.ErrorCode) int {
	switch code {
	case errcodes.InvalidSide, errcodes.InvalidAction:
		return http.StatusBadRequest
	case errcodes.NoData:
		return http.StatusNotFound
	case errcodes.MarketplaceUnreachable:
		return http.StatusBadGateway
	case errcodes.StoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
