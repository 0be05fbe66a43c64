package inference

// FloorplanStylePrefix is prepended verbatim to the analysis output when
// building the image-generation prompt.
const FloorplanStylePrefix = "minimalist 2D architectural floor plan, clean black lines on a white background, top-down view, no furniture, no text labels: "

// LayoutJSONPrompt asks the analysis model for a machine-readable layout
// description, returned directly to the caller.
const LayoutJSONPrompt = "Analyze this photo of a room in detail. Detect the position and number of doors and " +
	"windows, and make a reasonable estimate of the room's dimensions. Then output the floor plan inferred from " +
	"this information as text or simple SVG. Respond with JSON only, using a single key 'layout_plan' whose value " +
	"holds the floor plan information."

// LayoutHTMLPrompt asks for a self-contained page that is written to the
// output bucket as-is.
const LayoutHTMLPrompt = "Analyze this photo of a room in detail. Detect the position and number of doors and " +
	"windows, and make a reasonable estimate of the room's dimensions. Then produce a complete standalone HTML " +
	"page that renders the inferred floor plan using inline SVG. Respond with the HTML document only, no " +
	"explanation and no markdown fences."

// LayoutDescriptionPrompt asks for free text suitable as an image-generation
// prompt for the second pipeline stage.
const LayoutDescriptionPrompt = "Analyze this photo of a room. Describe the room's shape, approximate dimensions, " +
	"and the position and number of doors and windows, as a single concise paragraph of plain text suitable as a " +
	"prompt for an image generation model. Respond with the description only."
