package problem

import "englab/internal/model"

// starterProblems is the built-in set loaded into an empty bank so a fresh
// install has something to assign.
var starterProblems = []CreateProblemInput{
	{
		Title:       "Basic Grammar 1",
		Type:        model.TypeGrammar,
		Difficulty:  model.LevelBeginner,
		TimeLimit:   15,
		Content:     "Choose the correct form of the verb: He ___ (play) basketball every weekend.",
		Keywords:    []string{"play", "plays", "played", "playing"},
		ModelAnswer: "He plays basketball every weekend.",
	},
	{
		Title:       "Basic Grammar 2",
		Type:        model.TypeGrammar,
		Difficulty:  model.LevelBeginner,
		TimeLimit:   15,
		Content:     "Fill in the blank with the correct article (a, an, the): I saw ___ elephant at the zoo.",
		Keywords:    []string{"a", "an", "the"},
		ModelAnswer: "I saw an elephant at the zoo.",
	},
	{
		Title:       "Basic Vocabulary 1",
		Type:        model.TypeVocabulary,
		Difficulty:  model.LevelBeginner,
		TimeLimit:   10,
		Content:     "What is the opposite of 'happy'?",
		Keywords:    []string{"sad", "unhappy", "opposite", "emotion"},
		ModelAnswer: "The opposite of 'happy' is 'sad'.",
	},
	{
		Title:       "Basic Vocabulary 2",
		Type:        model.TypeVocabulary,
		Difficulty:  model.LevelBeginner,
		TimeLimit:   10,
		Content:     "Complete the word: App__ (fruit)",
		Keywords:    []string{"apple", "fruit", "food"},
		ModelAnswer: "Apple",
	},
	{
		Title:      "Basic Reading 1",
		Type:       model.TypeReading,
		Difficulty: model.LevelBeginner,
		TimeLimit:  20,
		Content: "Read the passage:\n" +
			"Tom has a pet dog. His dog is black and white.\n" +
			"The dog likes to play with a ball.\n\n" +
			"Question: What color is Tom's dog?",
		Keywords:    []string{"black", "white", "dog", "pet", "color"},
		ModelAnswer: "Tom's dog is black and white.",
	},
	{
		Title:       "Intermediate Grammar 1",
		Type:        model.TypeGrammar,
		Difficulty:  model.LevelIntermediate,
		TimeLimit:   20,
		Content:     "Complete the sentence using the present perfect tense: She ___ (live) in Paris for five years.",
		Keywords:    []string{"has", "have", "lived", "living"},
		ModelAnswer: "She has lived in Paris for five years.",
	},
	{
		Title:       "Intermediate Vocabulary 1",
		Type:        model.TypeVocabulary,
		Difficulty:  model.LevelIntermediate,
		TimeLimit:   15,
		Content:     "Choose the correct word: The weather was ___ (terrible/terrific) yesterday. We had sunshine all day!",
		Keywords:    []string{"terrible", "terrific", "weather", "positive"},
		ModelAnswer: "The weather was terrific yesterday.",
	},
	{
		Title:      "Intermediate Reading 1",
		Type:       model.TypeReading,
		Difficulty: model.LevelIntermediate,
		TimeLimit:  25,
		Content: "Read the passage:\n" +
			"Sarah loves to cook. Every weekend, she tries a new recipe.\n" +
			"Last weekend, she made a chocolate cake for her family.\n" +
			"Everyone said it was delicious.\n\n" +
			"Question: What did Sarah make last weekend?",
		Keywords:    []string{"cook", "recipe", "chocolate", "cake", "weekend"},
		ModelAnswer: "Sarah made a chocolate cake last weekend.",
	},
	{
		Title:       "Advanced Grammar 1",
		Type:        model.TypeGrammar,
		Difficulty:  model.LevelAdvanced,
		TimeLimit:   25,
		Content:     "Rewrite the sentence in reported speech: He said, 'I am going to the party tonight.'",
		Keywords:    []string{"reported", "speech", "indirect", "tense", "change"},
		ModelAnswer: "He said that he was going to the party that night.",
	},
	{
		Title:       "Advanced Vocabulary 1",
		Type:        model.TypeVocabulary,
		Difficulty:  model.LevelAdvanced,
		TimeLimit:   20,
		Content:     "Choose the most appropriate word: The scientist's ___ (hypothesis/theory/guess) was supported by years of research.",
		Keywords:    []string{"hypothesis", "theory", "guess", "research", "scientific"},
		ModelAnswer: "The scientist's hypothesis was supported by years of research.",
	},
}

// SeedStarter loads the starter problems into an empty bank. It is a no-op
// when the bank already has records.
func (s *Service) SeedStarter() (int, error) {
	if s.problems.Len() > 0 {
		return 0, nil
	}
	seeded := 0
	for _, in := range starterProblems {
		if _, err := s.Create(in); err != nil {
			return seeded, err
		}
		seeded++
	}
	return seeded, nil
}
