package graph

// schemaString GraphQL Schema定义
const schemaString = `
schema {
  query: Query
  mutation: Mutation
}

enum TallyStatus {
  PENDING
  WINNER
  TIE
}

enum CastStatus {
  ACCEPTED
  ALREADY_VOTED
  INVALID_SELECTION
}

type Session {
  voterId: ID!
  email: String!
  isAdmin: Boolean!
}

type Category {
  id: ID!
  name: String!
  description: String
  createdAt: String!
  nominees: [Nominee!]!
}

type Nominee {
  id: ID!
  name: String!
  createdAt: String!
}

type Nomination {
  id: ID!
  categoryId: ID!
  nomineeId: ID!
}

type Structure {
  categories: [Category!]!
  warnings: [String!]!
}

type BallotChoice {
  nomineeId: ID!
  nomineeName: String!
  label: String!
}

type BallotCategory {
  category: Category!
  hasVoted: Boolean!
  choice: BallotChoice
}

type Ballot {
  categories: [BallotCategory!]!
  warnings: [String!]!
}

type TallyEntry {
  nomineeId: ID!
  nomineeName: String!
  voteCount: Int!
}

type CategoryResult {
  categoryId: ID!
  categoryName: String!
  status: TallyStatus!
  statusLabel: String!
  winners: [TallyEntry!]!
  winnerLabel: String!
  maxVotes: Int!
  totalVotes: Int!
  entries: [TallyEntry!]!
  ranked: [TallyEntry!]!
}

type Vote {
  id: ID!
  categoryId: ID!
  nomineeId: ID!
  createdAt: String!
}

type CastResult {
  status: CastStatus!
  message: String!
  vote: Vote
}

type Dashboard {
  categories: Int!
  nominees: Int!
  votes: Int!
}

input VoteInput {
  categoryId: ID!
  nomineeId: ID
}

input CategoryInput {
  name: String!
  description: String
}

type Query {
  # 当前会话，未登录时为空
  me: Session

  # 奖项及提名的候选人
  structure: Structure!

  # 当前投票人的投票页
  ballot: Ballot!

  # 所有奖项的计票结果
  results: [CategoryResult!]!

  # 管理后台统计
  dashboard: Dashboard!
}

type Mutation {
  castVote(input: VoteInput!): CastResult!

  createCategory(input: CategoryInput!): Category!
  updateCategory(id: ID!, input: CategoryInput!): Category!
  deleteCategory(id: ID!): Boolean!

  createNominee(name: String!, categoryIds: [ID!]): Nominee!
  updateNominee(id: ID!, name: String!): Nominee!
  deleteNominee(id: ID!): Boolean!

  linkNominee(categoryId: ID!, nomineeId: ID!): Nomination!
  unlinkNominee(categoryId: ID!, nomineeId: ID!): Boolean!
}
`
