package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/campusid/auth/internal/auth/domain"
	"github.com/campusid/auth/internal/auth/service"
	"github.com/campusid/auth/pkg/authsdk"
	"github.com/campusid/auth/pkg/httpx"
	"github.com/campusid/auth/pkg/idx"
)

type AdminUsersHandler struct {
	AccountService *service.AccountService
}

// HandleCreate provisions an account.
//
//	@Summary		Provision an account
//	@Description	Creates an account whose login and initial password are both the CIN.
//	@Description	The CIN is returned once in initialCredentials; only its hash is stored.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CreateUserRequest		true	"Account to create"
//	@Success		201		{object}	authsdk.CreateUserResponse		"Created account and initial login"
//	@Failure		400		{object}	authsdk.ValidationErrorResponse	"Validation failed"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Missing or invalid access token"
//	@Failure		403		{object}	authsdk.ErrorResponse			"Caller is not an admin"
//	@Failure		409		{object}	authsdk.ErrorResponse			"Email or login already exists"
//	@Router			/api/auth/admin/users [post].
func (h *AdminUsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CreateUserRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		authsdk.WriteValidationError(w, map[string]string{"role": "must be one of " + strings.Join(domain.RoleNames(), ", ")})
		return
	}

	view, creds, err := h.AccountService.BootstrapAccount(r.Context(), domain.NewAccount{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      role,
		CIN:       req.CIN,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.CreateUserResponse{
		User:               toUserSummary(view),
		InitialCredentials: authsdk.InitialCredentials{Login: creds.Login},
	})
}

// HandleList lists accounts.
//
//	@Summary		List accounts
//	@Description	Lists accounts newest first. cin selects a single login; otherwise limit applies (default 5) unless all is true.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			cin		query		string							false	"Exact login to look up"
//	@Param			limit	query		int								false	"Maximum number of accounts"
//	@Param			all		query		bool							false	"Return every account"
//	@Success		200		{object}	authsdk.ListUsersResponse		"Accounts"
//	@Failure		400		{object}	authsdk.ValidationErrorResponse	"Invalid query parameters"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Missing or invalid access token"
//	@Failure		403		{object}	authsdk.ErrorResponse			"Caller is not an admin"
//	@Router			/api/auth/admin/users [get].
func (h *AdminUsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter, errs := parseListFilter(r)
	if errs != nil {
		authsdk.WriteValidationError(w, errs)
		return
	}

	views, err := h.AccountService.ListUsers(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	users := make([]authsdk.AccountResponse, 0, len(views))
	for _, v := range views {
		users = append(users, toAccountResponse(v))
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.ListUsersResponse{Users: users})
}

func parseListFilter(r *http.Request) (domain.ListFilter, map[string]string) {
	q := r.URL.Query()
	errs := make(map[string]string)

	var filter domain.ListFilter
	if cin := strings.TrimSpace(q.Get("cin")); cin != "" {
		filter.Login = &cin
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			errs["limit"] = "must be a positive integer"
		}
		filter.Limit = n
	}
	if raw := q.Get("all"); raw != "" {
		all, err := strconv.ParseBool(raw)
		if err != nil {
			errs["all"] = "must be a boolean"
		}
		filter.All = all
	}

	if len(errs) > 0 {
		return domain.ListFilter{}, errs
	}
	return filter, nil
}

// HandleUpdate patches an account.
//
//	@Summary		Update an account
//	@Description	Updates names, email or role of an account. Blank fields are ignored.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Account ID"
//	@Param			request	body		authsdk.UpdateUserRequest		true	"Fields to change"
//	@Success		200		{object}	authsdk.UserResponse			"Updated account"
//	@Failure		400		{object}	authsdk.ValidationErrorResponse	"Validation failed"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Missing or invalid access token"
//	@Failure		403		{object}	authsdk.ErrorResponse			"Caller is not an admin"
//	@Failure		404		{object}	authsdk.ErrorResponse			"Account not found"
//	@Failure		409		{object}	authsdk.ErrorResponse			"Email already in use"
//	@Router			/api/auth/admin/users/{id} [put].
func (h *AdminUsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	var req authsdk.UpdateUserRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	patch := domain.AccountPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}
	if req.Role != nil && strings.TrimSpace(*req.Role) != "" {
		role, err := domain.ParseRole(*req.Role)
		if err != nil {
			authsdk.WriteValidationError(w, map[string]string{"role": "must be one of " + strings.Join(domain.RoleNames(), ", ")})
			return
		}
		patch.Role = &role
	}

	view, err := h.AccountService.UpdateUser(r.Context(), id.String(), patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.UserResponse{User: toAccountResponse(view)})
}

// HandleDelete removes an account.
//
//	@Summary		Delete an account
//	@Description	Deletes an account and every refresh token registered in the database for it.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string					true	"Account ID"
//	@Success		200	{object}	authsdk.OKResponse		"Deleted"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Missing or invalid access token"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Caller is not an admin"
//	@Failure		404	{object}	authsdk.ErrorResponse	"Account not found"
//	@Router			/api/auth/admin/users/{id} [delete].
func (h *AdminUsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	deleted, err := h.AccountService.DeleteUser(r.Context(), id.String())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !deleted {
		authsdk.ErrAccountNotFound.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.OKResponse{OK: true})
}

// accountID reads the {id} path segment. Anything that is not a ULID cannot
// name an account and is answered with account_not_found.
func accountID(w http.ResponseWriter, r *http.Request) (idx.ID, bool) {
	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		authsdk.ErrAccountNotFound.WriteError(w)
		return idx.Zero, false
	}
	return id, true
}

// AdminOnlyHandler godoc
//
//	@Summary		Admin probe
//	@Description	Answers {ok:true} when the caller holds the admin role.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.OKResponse		"Caller is an admin"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Missing or invalid access token"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Caller is not an admin"
//	@Router			/api/auth/admin-only [get].
func AdminOnlyHandler(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, authsdk.OKResponse{OK: true})
}
