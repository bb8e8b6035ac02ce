package server

import (
	"context"
	"fmt"
	"net/http"

	"p2p_market/internal/domain/service/offerbook"
	"p2p_market/pkg/contextx"
	"p2p_market/pkg/httpx/reply"
	"p2p_market/pkg/httpx/req"
	"p2p_market/pkg/rest"
)

const defaultActor contextx.Actor = "api"

type settingsService interface {
	ToggleAutoUpdate(ctx context.Context, enabled bool, actor string) offerbook.Result
}

type SettingsServer struct {
	settingsService settingsService
}

func NewSettingsServer(settingsService settingsService) SettingsServer {
	return SettingsServer{
		settingsService: settingsService,
	}
}

func (s SettingsServer) postV1Settings(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.SettingsRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	actor := contextx.ActorFromContextOr(ctx, defaultActor)

	result := s.settingsService.ToggleAutoUpdate(ctx, *request.Enabled, actor.String())
	if result.Err != nil {
		reply.Fail(ctx, w, statusFor(result.Err.Code), result.Err.Code, result.Err.Message)

		return nil
	}

	reply.JSON(ctx, w, http.StatusOK, rest.SettingsResponse{
		Success:           true,
		AutoUpdateEnabled: result.AutoUpdate,
	})

	return nil
}
