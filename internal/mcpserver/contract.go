package mcpserver

// DocumentFormatContract describes the Markdown document format that LLM
// consumers can expect when reading committed documents.
const DocumentFormatContract = `# Reinforcer Document Format Contract

Every document in the knowledge base is produced by the processing pipeline.
Callers never write documents directly: submit content with ` + "`" + `stage_content` + "`" + `,
review and edit it, then ` + "`" + `commit_staged` + "`" + `.

## Structure

` + "```" + `markdown
---
title: Human-readable title
source_url: https://example.com/post      # N/A for direct text
source_type: web-article                  # web-article | youtube-video | direct-text
date_extracted: 2025-01-15T10:00:00Z
user_tags:
  - go
user_purpose: Why this was saved
summary: One extractive sentence from the body.
extracted_keywords:
  - static typing
---

Body in Markdown.
` + "```" + `

## Rules

1. **Front matter comes first.** A line with exactly ` + "`" + `---` + "`" + ` opens and closes it.
2. **Field order is fixed** and matches the block above. Do not reorder keys.
3. **summary** and **extracted_keywords** are computed once when content is staged.
   Editing a staged document never recomputes them.
4. **title**, **user_tags** and **user_purpose** are the only fields a reviewer edits.
5. **Web articles** are converted from HTML to Markdown. Transcripts and direct text
   are stored as given.

## Layout

- ` + "`" + `articles/` + "`" + `, ` + "`" + `videos/` + "`" + ` and ` + "`" + `direct_text/` + "`" + ` hold documents by source type.
- File names are ` + "`" + `NNNN-slug.md` + "`" + ` where NNNN is the zero-padded sequence number.
- ` + "`" + `kb_index.json` + "`" + ` lists every committed entry in commit order.
- Sequence numbers are never reused. Committed documents are never modified.
`
