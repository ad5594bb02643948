package email

const subjectHotLeadFmt = "Hot lead: %s scored %d"
