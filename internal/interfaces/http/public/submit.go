package public

import (
	"io"
	"net/http"

	"github.com/sngm3741/makoto-club-services/intake/internal/interfaces/http/common"
)

func (h *Handler) submitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, common.MaxRequestBody))
		if err != nil {
			h.requestLogger(r.Context()).WithError(err).Debug("failed to read request body")
			common.WriteResponse(h.logger, w, common.Message(http.StatusBadRequest, common.MessageInvalidJSON))
			return
		}

		resp, err := h.Handle(r.Context(), string(body))
		if err != nil {
			common.WriteResponse(h.logger, w, common.Message(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)))
			return
		}
		common.WriteResponse(h.logger, w, resp)
	}
}
