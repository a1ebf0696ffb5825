package dtos

type SignaturePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SignatureRenderRequest replays a captured stroke set server-side and
// returns the encoded image, for clients that cannot rasterize locally.
type SignatureRenderRequest struct {
	Width            int                `json:"width" validate:"required,gt=0"`
	Height           int                `json:"height" validate:"required,gt=0"`
	DevicePixelRatio float64            `json:"devicePixelRatio" validate:"omitempty,gt=0"`
	Strokes          [][]SignaturePoint `json:"strokes" validate:"required"`
}

type SignatureRenderResponse struct {
	Image string `json:"image"`
}
