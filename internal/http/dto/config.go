package dto

type UpdateConfigRequest struct {
	Model  string `json:"model" binding:"required,oneof=deepseek tongyi"`
	APIKey string `json:"api_key" binding:"required"`
}

type ConfigResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
