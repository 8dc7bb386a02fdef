package domain

// DefaultTags is the built-in tag vocabulary used when no tags file is
// configured.
var DefaultTags = []string{
	"React", "Go", "Python", "JavaScript", "TypeScript", "Rust", "Java",
	"Node.js", "Django", "Vue", "GraphQL", "PostgreSQL", "MongoDB", "Docker",
	"Kubernetes", "AWS", "Machine Learning", "Flutter",
}
