package catalog

import "time"

// Seeds returns the fixed demonstration set appended after live records so
// the platform is never empty on first load. Each call returns a fresh
// slice; snapshots must never share backing arrays with callers.
func Seeds() []VideoRecord {
	now := time.Now()
	return []VideoRecord{
		{
			ID:          "seed-1",
			Title:       "Cyberpunk City Ambience - 4K",
			Thumbnail:   "https://images.unsplash.com/photo-1605218427360-691be2c6d232?q=80&w=1000&auto=format&fit=crop",
			Channel:     "Neon Dreams",
			Views:       1250430,
			UploadedAt:  now.Add(-2 * 24 * time.Hour),
			Duration:    "12:34",
			Avatar:      "https://api.dicebear.com/7.x/avataaars/svg?seed=Neon",
			Description: "Experience the futuristic vibes of a neon-soaked metropolis. Best viewed in high definition.",
			VideoURL:    "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/TearsOfSteel.mp4",
		},
		{
			ID:          "seed-2",
			Title:       "Mountain Hiking Guide for Beginners",
			Thumbnail:   "https://images.unsplash.com/photo-1551632811-561732d1e306?q=80&w=1000&auto=format&fit=crop",
			Channel:     "Adventure Time",
			Views:       85000,
			UploadedAt:  now.Add(-5 * 24 * time.Hour),
			Duration:    "08:12",
			Avatar:      "https://api.dicebear.com/7.x/avataaars/svg?seed=Hiker",
			Description: "Everything you need to know before your first hike.",
			VideoURL:    "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4",
		},
		{
			ID:          "seed-3",
			Title:       "Abstract Fluid Art Process",
			Thumbnail:   "https://images.unsplash.com/photo-1541701494587-cb58502866ab?q=80&w=1000&auto=format&fit=crop",
			Channel:     "Creative Minds",
			Views:       432000,
			UploadedAt:  now.Add(-12 * 24 * time.Hour),
			Duration:    "05:45",
			Avatar:      "https://api.dicebear.com/7.x/avataaars/svg?seed=Art",
			Description: "Watch the satisfying process of acrylic pouring.",
			VideoURL:    "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ElephantsDream.mp4",
		},
	}
}
