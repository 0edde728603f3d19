package config

const (
	defaultLogDir          = "~/.local/share/rejoin/logs"
	defaultExtension       = ".AVI"
	defaultWindow          = 30
	defaultTolerance       = 10
	defaultUseCache        = true
	defaultOverlayX        = 500
	defaultOverlayY        = 430
	defaultOverlayWidth    = 140
	defaultOverlayHeight   = 42
	defaultAllowedChars    = "0123456789:"
	defaultPageSegMode     = 8
	defaultStateBackend    = StateBackendText
	defaultDeleteOriginals = false
	defaultVerifyCodecs    = true
	defaultFFmpegBinary    = "ffmpeg"
	defaultFFprobeBinary   = "ffprobe"
	defaultTesseractBinary = "tesseract"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultProgressMode    = ProgressAuto
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Scan: Scan{
			Extension: defaultExtension,
			Window:    defaultWindow,
			Tolerance: defaultTolerance,
			UseCache:  defaultUseCache,
		},
		Overlay: Overlay{
			X:            defaultOverlayX,
			Y:            defaultOverlayY,
			Width:        defaultOverlayWidth,
			Height:       defaultOverlayHeight,
			AllowedChars: defaultAllowedChars,
			PageSegMode:  defaultPageSegMode,
		},
		State: State{
			Backend: defaultStateBackend,
		},
		Merge: Merge{
			DeleteOriginals: defaultDeleteOriginals,
			VerifyCodecs:    defaultVerifyCodecs,
		},
		Tools: Tools{
			FFmpeg:    defaultFFmpegBinary,
			FFprobe:   defaultFFprobeBinary,
			Tesseract: defaultTesseractBinary,
		},
		Logging: Logging{
			Format:   defaultLogFormat,
			Level:    defaultLogLevel,
			Progress: defaultProgressMode,
		},
	}
}
