package types

// UpdateProfileRequest updates only the fields that are present.
type UpdateProfileRequest struct {
	FullName  *string `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Address   *string `json:"address,omitempty"`
}
