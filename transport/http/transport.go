package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/kit/endpoint"

	"github.com/flarexio/social"
	"github.com/flarexio/social/friend"
	"github.com/flarexio/social/user"
)

const friendshipExistsMessage = "Friendship already exists."

// StatusCode maps service errors to HTTP status codes.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, friend.ErrFriendshipExists),
		errors.Is(err, friend.ErrSelfFriendship),
		errors.Is(err, user.ErrInvalidID),
		errors.Is(err, social.ErrInvalidRequest):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, code int, err error) {
	msg := err.Error()
	if errors.Is(err, friend.ErrFriendshipExists) {
		msg = friendshipExistsMessage
	}

	c.Abort()
	c.Error(err)
	c.String(code, msg)
}

func AddUserHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req social.AddUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abort(c, http.StatusBadRequest, err)
			return
		}

		resp, err := endpoint(c, req)
		if err != nil {
			abort(c, StatusCode(err), err)
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func UserHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := user.ParseID(c.Param("id"))
		if err != nil {
			abort(c, http.StatusBadRequest, err)
			return
		}

		resp, err := endpoint(c, id)
		if err != nil {
			abort(c, StatusCode(err), err)
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func AddFriendHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req social.AddFriendRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abort(c, http.StatusBadRequest, err)
			return
		}

		resp, err := endpoint(c, req)
		if err != nil {
			abort(c, StatusCode(err), err)
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func FriendsHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := user.ParseID(c.Param("userId"))
		if err != nil {
			abort(c, http.StatusBadRequest, err)
			return
		}

		resp, err := endpoint(c, id)
		if err != nil {
			abort(c, StatusCode(err), err)
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
