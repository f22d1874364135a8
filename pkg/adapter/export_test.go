package adapter

var ToContentsForTest = toContents
