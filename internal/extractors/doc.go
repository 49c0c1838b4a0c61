// Package extractors pulls typed facts out of segment text.
//
// Each extractor handles one record kind and works line by line with
// regular expressions: numbered or bulleted imperatives become steps,
// "X is Y" and "X: Y" become definitions, question and answer pairs become
// FAQs, "decided"/"agreed" lines become decisions and "Action:"/"TODO"
// lines become action items.
//
// Extractors are built by name through a Registry and run together by a
// Pipeline.
package extractors
