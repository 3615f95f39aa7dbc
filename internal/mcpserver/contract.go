package mcpserver

// DocumentFormatContract describes the post document model that LLM
// consumers edit through the tools of this server.
const DocumentFormatContract = `# Postframe Document Contract

A post is a fixed-size canvas, an optional background and a list of
elements painted in ascending zIndex order.

## Canvas

- ` + "`" + `width` + "`" + ` and ` + "`" + `height` + "`" + ` are positive pixel sizes. Presets: 1:1 (1080x1080),
  4:5 (1080x1350), 9:16 (1080x1920), 16:9 (1920x1080), 1.91:1 (1200x628).
- The background is one of ` + "`" + `color` + "`" + `, ` + "`" + `gradient` + "`" + ` (a CSS gradient), ` + "`" + `image` + "`" + `
  or ` + "`" + `video` + "`" + `.

## Elements

| type  | props                                  |
|-------|----------------------------------------|
| text  | text, category                         |
| image | src, originalSrc, mask                 |
| shape | shape (mask id), svgOutline            |

Every element has an ` + "`" + `id` + "`" + `, a ` + "`" + `position` + "`" + ` (top-left x/y), an optional ` + "`" + `size` + "`" + `,
` + "`" + `visible` + "`" + ` and ` + "`" + `locked` + "`" + ` flags, free-form CSS ` + "`" + `styles` + "`" + ` and an ` + "`" + `effects` + "`" + ` set.
Layers mirror elements one to one; never edit them directly.

## Effects

| effect       | params                                   | range            |
|--------------|------------------------------------------|------------------|
| blur         | value (px)                               | 0-100            |
| brightness   | value (%)                                | 0-200            |
| sepia        | value (%)                                | 0-100            |
| grayscale    | value (%)                                | 0-100            |
| border       | value (px), color                        | 0-20             |
| cornerRadius | value (px)                               | 0-500            |
| shadow       | blur, offsetX, offsetY, opacity, color   | 0-50, ±50, ±50, 0-100 |

Out-of-range values are clamped and reported as a warning. Effects only
affect the output while enabled.

## Masks

Image elements can be clipped by any id from ` + "`" + `list_masks` + "`" + `. Masking always
starts from the original image, so switching masks never compounds.
Unknown ids fall back to ` + "`" + `circle` + "`" + `.

## Images

Pass an https URL or a base64 data URI to ` + "`" + `add_image` + "`" + `. The bytes are stored
with the document and the element src becomes ` + "`" + `asset://<element id>` + "`" + `.

## History

Every successful edit is one undo step. ` + "`" + `undo` + "`" + ` and ` + "`" + `redo` + "`" + ` walk the history;
an edit after an undo discards the redo branch.
`
