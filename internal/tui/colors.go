package tui

// Color constants for the trackd terminal theme
const (
	// Text Colors
	ColorPrimaryText   = "#E6EAF2" // Primary text (titles, values)
	ColorSecondaryText = "#B1B8C7" // Secondary text
	ColorDisabledText  = "#6D7383" // Disabled/muted text
	ColorHelpText      = "240"     // Dark grey for help text

	// Accent Colors
	ColorAccentMain   = "#2563EB" // Accent elements, headers, borders
	ColorAccentBright = "#60A5FA" // Highlights, the running clock

	// State Colors
	ColorError   = "#EF4444" // Errors, work debt
	ColorSuccess = "#22C55E" // Success, work advance
	ColorWarning = "#F59E0B" // Warnings
)
