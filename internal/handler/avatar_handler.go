package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lobbychat/internal/app/storage"
	"lobbychat/internal/pkg/errs"
	"lobbychat/internal/pkg/logx"
	"lobbychat/internal/pkg/req"
	"lobbychat/internal/pkg/resp"
)

// avatarFormField is the multipart field carrying the image.
const avatarFormField = "avatar"

// HandleUploadAvatar stores an uploaded avatar and returns the reference clients put
// in the "pic" field of their login message.
func HandleUploadAvatar(store storage.StorageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Leave room for multipart framing on top of the image itself.
		if customErr := req.SetupMultipart(w, r, storage.MaxAvatarSize+64<<10); customErr != nil {
			resp.RespondError(w, customErr)
			return
		}

		file, header, err := r.FormFile(avatarFormField)
		if err != nil {
			resp.RespondError(w, errs.NewError(errs.ErrInvalidParams))
			return
		}
		defer file.Close()

		if customErr := storage.ValidateAvatarSize(header.Size); customErr != nil {
			resp.RespondError(w, customErr)
			return
		}

		contentType, customErr := storage.ValidateAvatarType(header.Filename, header.Header.Get("Content-Type"))
		if customErr != nil {
			resp.RespondError(w, customErr)
			return
		}

		ref, err := storage.NewAvatarRef(header.Filename)
		if err != nil {
			resp.RespondError(w, errs.NewError(errs.ErrUnknown, err))
			return
		}

		key, customErr := storage.AvatarKey(ref)
		if customErr != nil {
			resp.RespondError(w, customErr)
			return
		}

		if err := store.Upload(r.Context(), key, contentType, file); err != nil {
			resp.RespondError(w, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		logx.Info("Avatar uploaded", "pic", ref, "bytes", header.Size)

		resp.RespondSuccess(w, map[string]any{"pic": ref})
	}
}

// HandleAvatarRedirect redirects to a short-lived presigned download URL for an avatar.
func HandleAvatarRedirect(store storage.StorageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, customErr := storage.AvatarKey(chi.URLParam(r, "ref"))
		if customErr != nil {
			resp.RespondError(w, customErr)
			return
		}

		url, err := store.PresignDownload(r.Context(), key, storage.AvatarURLDuration)
		if err != nil {
			resp.RespondError(w, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		http.Redirect(w, r, url, http.StatusFound)
	}
}
