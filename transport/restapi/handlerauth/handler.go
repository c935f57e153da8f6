package handlerauth

import (
	"net/http"

	"github.com/yusufsyaifudin/appstore/internal/svc/authsvc"
	"github.com/yusufsyaifudin/appstore/internal/svc/svcerr"
	"github.com/yusufsyaifudin/appstore/pkg/respbuilder"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
	"github.com/yusufsyaifudin/appstore/transport/restapi/httpauth"
	"github.com/yusufsyaifudin/appstore/transport/restapi/httptyped"
)

type HandlerConfig struct {
	AuthService authsvc.Service `validate:"required"`
	Guard       *httpauth.Guard `validate:"required"`
}

type Handler struct {
	Config HandlerConfig
}

func NewHandler(conf HandlerConfig) (*Handler, error) {
	err := validator.Validate(conf)
	if err != nil {
		return nil, err
	}

	return &Handler{Config: conf}, nil
}

type RegisterReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
	Language string `json:"language,omitempty"`
}

// Register creates new account and logs it in.
// Path         : POST /auth/register
// Request Body : RegisterReq
// Response     : httptyped.AccountResp + auth cookie
func (h *Handler) Register() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var reqBody RegisterReq
		if err := httptyped.DecodeJSON(r, &reqBody); err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		out, err := h.Config.AuthService.Register(r.Context(), authsvc.InputRegister{
			Email:    reqBody.Email,
			Password: reqBody.Password,
			Name:     reqBody.Name,
			Role:     reqBody.Role,
			Language: reqBody.Language,
		})
		if err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		h.Config.Guard.SetCookie(w, out.Credential)
		respbuilder.WriteJSON(http.StatusCreated, w, r, httptyped.AccountResp{
			Account: httptyped.AccountFromSvc(out.Account),
		})
	}
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges email and password with auth cookie.
// Path         : POST /auth/login
// Request Body : LoginReq
// Response     : httptyped.AccountResp + auth cookie
func (h *Handler) Login() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var reqBody LoginReq
		if err := httptyped.DecodeJSON(r, &reqBody); err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		out, err := h.Config.AuthService.Login(r.Context(), authsvc.InputLogin{
			Email:    reqBody.Email,
			Password: reqBody.Password,
		})
		if err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		h.Config.Guard.SetCookie(w, out.Credential)
		respbuilder.WriteJSON(http.StatusOK, w, r, httptyped.AccountResp{
			Account: httptyped.AccountFromSvc(out.Account),
		})
	}
}

// Me returns the current account, read fresh from the store so the avatar is included.
// Path         : GET /auth/me
// Response     : httptyped.AccountResp
func (h *Handler) Me() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		acc, ok := httpauth.AccountFromContext(r.Context())
		if !ok {
			httptyped.WriteError(w, r, svcerr.Unauthorized("unauthorized"))
			return
		}

		out, err := h.Config.AuthService.Me(r.Context(), authsvc.InputMe{AccountID: acc.ID})
		if err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		respbuilder.WriteJSON(http.StatusOK, w, r, httptyped.AccountResp{
			Account: httptyped.AccountFromSvc(out.Account),
		})
	}
}

type UpdateMeReq struct {
	Name     *string `json:"name,omitempty"`
	Language *string `json:"language,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}

// UpdateMe changes name, preferred language or avatar of current account.
// Path         : PUT /auth/me
// Request Body : UpdateMeReq
// Response     : httptyped.AccountResp
func (h *Handler) UpdateMe() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		acc, ok := httpauth.AccountFromContext(r.Context())
		if !ok {
			httptyped.WriteError(w, r, svcerr.Unauthorized("unauthorized"))
			return
		}

		var reqBody UpdateMeReq
		if err := httptyped.DecodeJSON(r, &reqBody); err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		out, err := h.Config.AuthService.UpdateProfile(r.Context(), authsvc.InputUpdateProfile{
			AccountID: acc.ID,
			Name:      reqBody.Name,
			Language:  reqBody.Language,
			Avatar:    reqBody.Avatar,
		})
		if err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		respbuilder.WriteJSON(http.StatusOK, w, r, httptyped.AccountResp{
			Account: httptyped.AccountFromSvc(out.Account),
		})
	}
}

// Logout revokes the current session and expires the cookie.
// Path         : POST /auth/logout
// Response     : httptyped.MessageResp
func (h *Handler) Logout() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		_, err := h.Config.AuthService.Logout(r.Context(), authsvc.InputLogout{
			SessionToken: httpauth.SessionTokenFromContext(r.Context()),
		})
		if err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		h.Config.Guard.ClearCookie(w)
		respbuilder.WriteJSON(http.StatusOK, w, r, httptyped.MessageResp{
			Message: "logged out successfully",
		})
	}
}

type VerifyReq struct {
	Token string `schema:"token"`
}

// Verify marks the account e-mail as verified using the link sent on registration.
// Path          : GET /auth/verify
// Request Query : VerifyReq
// Response      : httptyped.AccountResp
func (h *Handler) Verify() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var query VerifyReq
		if err := httptyped.DecodeQuery(r, &query); err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		out, err := h.Config.AuthService.VerifyEmail(r.Context(), authsvc.InputVerifyEmail{Token: query.Token})
		if err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		respbuilder.WriteJSON(http.StatusOK, w, r, httptyped.AccountResp{
			Account: httptyped.AccountFromSvc(out.Account),
		})
	}
}
