package tasks

const objectivesPrompt = `Create %s SMART learning objectives for a course on %q targeting %q.

Each objective should use a Bloom's taxonomy verb (e.g. identify, explain, apply, analyze, evaluate, create) and be measurable.
Order the objectives in the sequence they should be taught.

Return ONLY a JSON array of objective strings (no other text):
[
  "Explain the difference between ...",
  "Apply ... to ..."
]`

const lessonsPrompt = `Create one detailed lesson blueprint for each of these learning objectives:

%s

Each blueprint should include: title, hook, explanation, practice activity, reflection, and estimated time.
Every objective must get exactly one lesson. Reference the objective by its "id".

Return ONLY a JSON array with this exact structure (no other text):
[
  {
    "objective_id": "obj-1",
    "title": "Short lesson title (no 'Lesson N:' prefix)",
    "hook": "Opening activity that captures attention",
    "explain": "Core content of the lesson",
    "practice": "Activity where learners apply the content",
    "reflect": "Closing reflection prompt",
    "seat_time": 60,
    "modality": "in-person|online|hybrid|self-paced"
  }
]

Guidelines:
- seat_time is a whole number of minutes
- Keep each field to a short paragraph`

const assessmentsPrompt = `Create assessments for these lessons:

%s

They serve these learning objectives:

%s

For each lesson, provide %d MCQs and 1 short answer question that align with the lesson's learning objective.
Every lesson must get exactly one assessment. Reference the lesson by its "id".

Return ONLY a JSON array with this exact structure (no other text):
[
  {
    "lesson_id": "lesson-1",
    "mcqs": [
      {
        "question": "Question text",
        "options": ["First option", "Second option", "Third option", "Fourth option"],
        "correct": 0,
        "explanation": "Why the correct option is right"
      }
    ],
    "short_answer": {
      "question": "Open question",
      "rubric": "What a good answer must contain",
      "sample_answer": "An example of a good answer"
    }
  }
]

Guidelines:
- "correct" is the zero-based index of the right option
- Options are plain text without "A." style labels`

const reviewPrompt = `Review this curriculum for alignment and quality:

%s

Check if objectives, lessons, and assessments are well-aligned.

Your response MUST include:
1. A clear PASS or FAIL verdict on the first line
2. A list of concerns, if any (prefix each with "CONCERN:")
3. Notes on how the curriculum could be improved

State "PASS" on the first line if the curriculum is ready to teach.
State "FAIL" on the first line if any concern blocks that.`
