package res

// AboutContent contains the Markdown content for the About dialog.
// This is maintained separately for easy updates.
const AboutContent = `A lightweight internet radio player built with Go and Fyne.

**Features:**
- Plays MP3, Ogg Vorbis, FLAC and WAV streams
- Resolves PLS and M3U playlists
- Shows the current track from ICY stream metadata
- Live frequency visualizer and level meter
- Station search by name or genre
- Light and dark themes
`
