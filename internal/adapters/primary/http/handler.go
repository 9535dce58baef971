package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/denchenko/pa/internal/core/domain"
	"github.com/denchenko/pa/internal/core/state"
	"github.com/gorilla/mux"
)

var errBadRequest = errors.New("bad request")

type postRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

type commentRequest struct {
	Body string `json:"body"`
}

type errorResponse struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	st := state.NewStore(s.app.State().Pagination.DefaultLimit())
	st.ApplyValues(r.URL.Query())

	v, err := s.app.PostsViewFor(r.Context(), st.Filter.Get(), st.Pagination.Get())
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleAddPost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		s.writeError(w, r, fmt.Errorf("%w: title is required", errBadRequest))

		return
	}

	var body string
	if req.Body != nil {
		body = *req.Body
	}

	st := state.NewStore(s.app.State().Pagination.DefaultLimit())
	st.ApplyValues(r.URL.Query())

	post, err := s.app.AddPostFor(r.Context(), st.Filter.Get(), st.Pagination.Get(), *req.Title, body)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handlePostDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	detail, err := s.app.PostDetail(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	var req postRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}
	if req.Title == nil && req.Body == nil {
		s.writeError(w, r, fmt.Errorf("%w: nothing to update", errBadRequest))

		return
	}

	post, err := s.app.UpdatePost(r.Context(), id, domain.UpdatePostRequest{Title: req.Title, Body: req.Body})
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if err := s.app.DeletePost(r.Context(), id); err != nil {
		s.writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	comments, err := s.app.Comments(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, comments)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	body, err := commentBody(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	c, err := s.app.AddComment(r.Context(), postID, body)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	postID, id, err := commentIDs(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	body, err := commentBody(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	c, err := s.app.UpdateComment(r.Context(), postID, id, body)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	postID, id, err := commentIDs(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if err := s.app.DeleteComment(r.Context(), postID, id); err != nil {
		s.writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLikeComment(w http.ResponseWriter, r *http.Request) {
	postID, id, err := commentIDs(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	c, err := s.app.LikeComment(r.Context(), postID, id)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.app.Tags(r.Context())
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, tags)
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	u, err := s.app.User(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, u)
}

func pathID(r *http.Request, name string) (int, error) {
	raw := mux.Vars(r)[name]

	id, err := strconv.Atoi(raw)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, name, raw)
	}

	return id, nil
}

func commentIDs(r *http.Request) (int, int, error) {
	postID, err := pathID(r, "postId")
	if err != nil {
		return 0, 0, err
	}

	id, err := pathID(r, "id")
	if err != nil {
		return 0, 0, err
	}

	return postID, id, nil
}

func commentBody(r *http.Request) (string, error) {
	var req commentRequest
	if err := decode(r, &req); err != nil {
		return "", err
	}
	if strings.TrimSpace(req.Body) == "" {
		return "", fmt.Errorf("%w: body is required", errBadRequest)
	}

	return req.Body, nil
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %w", errBadRequest, err)
	}

	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

// writeError maps err to a response status: bad input is 400, unknown
// entities are 404 and remote API failures are 502 with the upstream status.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	default:
		if s.status != nil {
			if upstream := s.status(err); upstream != 0 {
				status = http.StatusBadGateway
				resp.UpstreamStatus = upstream
			}
		}
	}

	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}

	s.writeJSON(w, status, resp)
}
