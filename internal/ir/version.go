package ir

// GeneratorVersion is the polyconst generator version.
// It is part of every cache key, so bumping it invalidates cached outputs.
const GeneratorVersion = "0.1.0"
