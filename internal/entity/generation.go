package entity

// GenerationRequest 图片生成请求
type GenerationRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	StyleTemplate  string `json:"style_template,omitempty"`
	AspectRatio    string `json:"aspect_ratio,omitempty"`
	Quality        string `json:"quality,omitempty"`
	Seed           *int64 `json:"seed,omitempty"`
	UserID         string `json:"user_id,omitempty"`
	APIKey         string `json:"api_key"`
}

// ImageMetadata 生成结果的元数据
type ImageMetadata struct {
	Model            string  `json:"model"`
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	Steps            int     `json:"steps"`
	GuidanceScale    float64 `json:"guidance_scale"`
	Seed             *int64  `json:"seed,omitempty"`
	GenerationTimeMs int64   `json:"generation_time"`
	TokenCount       int     `json:"token_count"`
	FileSizeBytes    int64   `json:"file_size"`
}

// GenerationResult 一次成功生成的结果，创建后不再修改
type GenerationResult struct {
	ImageID        string        `json:"image_id"`
	ImageURL       string        `json:"image_url"`
	ThumbnailURL   string        `json:"thumbnail_url"`
	EnhancedPrompt string        `json:"enhanced_prompt"`
	Metadata       ImageMetadata `json:"metadata"`
	GenerationTime int64         `json:"generation_time"`

	// 以下字段只在服务内部流转
	ImageData string `json:"-"`
	MimeType  string `json:"-"`
}

// GenerationResponseData POST /api/generate 成功响应中的 data
type GenerationResponseData struct {
	ImageID        string            `json:"image_id"`
	ImageURL       string            `json:"image_url"`
	ThumbnailURL   string            `json:"thumbnail_url"`
	Metadata       ImageMetadata     `json:"metadata"`
	GenerationTime int64             `json:"generation_time"`
	UserLimits     *RemainingSummary `json:"user_limits,omitempty"`
}
