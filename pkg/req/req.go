package req

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/Dhoini/storefront-service/pkg/res"
	"github.com/gin-gonic/gin"
)

// ErrEmptyBody возвращается, когда тело запроса отсутствует
var ErrEmptyBody = errors.New("request body is empty")

// Decode декодирует JSON из io.Reader в структуру типа T.
func Decode[T any](body io.Reader) (T, error) {
	var payload T
	if body == nil {
		return payload, ErrEmptyBody
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return payload, ErrEmptyBody
		}
		return payload, err
	}
	return payload, nil
}

// DecodeString декодирует JSON из строки, например из поля multipart-формы.
func DecodeString[T any](raw string) (T, error) {
	var payload T
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return payload, err
	}
	return payload, nil
}

// HandleBody декодирует тело запроса и отвечает 400, если JSON некорректен.
// Field rules are checked later on the domain entity.
func HandleBody[T any](c *gin.Context, log *logger.Logger) (*T, error) {
	body, err := Decode[T](c.Request.Body)
	if err != nil {
		log.Warnw("Failed to decode request body", "path", c.FullPath(), "error", err)
		res.JsonErrorResponse(c, res.ErrorResponse{Error: "malformed JSON body: " + err.Error()}, http.StatusBadRequest, log)
		return nil, err
	}
	return &body, nil
}
