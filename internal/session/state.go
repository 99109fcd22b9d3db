package session

// DynamicState holds the caller-toggleable playback flags. Every mutation
// re-derives the observable side effects on the media surface; the record
// itself never transitions on its own.
type DynamicState struct {
	Autoplay     bool `json:"autoplay"`
	Loop         bool `json:"loop"`
	Playing      bool `json:"playing"`
	ManualSeek   bool `json:"manual_seek"`
	ShowControls bool `json:"show_controls"`
}

// LoadingState tracks the independently arriving readiness signals and the
// flags derived from them. ReadyToProcessFrames and IsOverlayPrepared are
// terminal: once true they never revert for the session.
type LoadingState struct {
	IsRendered           bool `json:"is_rendered"`
	IsSizePrepared       bool `json:"is_size_prepared"`
	IsDataLoaded         bool `json:"is_data_loaded"`
	OverlayCanBePrepared bool `json:"overlay_can_be_prepared"`
	IsOverlayPrepared    bool `json:"is_overlay_prepared"`
	IsPreparingOverlay   bool `json:"is_preparing_overlay"`
	ReadyToProcessFrames bool `json:"ready_to_process_frames"`
}
